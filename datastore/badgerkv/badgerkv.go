/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package badgerkv implements dbstore.Backend on an embedded Badger database.
//
// Rows of a table live under the key prefix "{table}:" followed by the
// 8-byte big-endian entity key, so iteration order is key order. ReplaceAll
// deletes the prefix and writes the snapshot in a single read-write
// transaction.
package badgerkv

import (
	"context"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/errors"
)

// InMemory is the connection string that selects an in-memory database
const InMemory = ":memory:"

// Backend wraps a Badger database
type Backend struct {
	db       *badger.DB
	location string
	logger   *zap.Logger
}

var _ dbstore.Backend = (*Backend)(nil)

// loggerAdapter adapts zap to badger.Logger
type loggerAdapter struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*loggerAdapter)(nil)

func (l *loggerAdapter) Errorf(msg string, items ...any)   { l.logger.Errorf(msg, items...) }
func (l *loggerAdapter) Warningf(msg string, items ...any) { l.logger.Warnf(msg, items...) }
func (l *loggerAdapter) Infof(msg string, items ...any)    { l.logger.Debugf(msg, items...) }
func (l *loggerAdapter) Debugf(msg string, items ...any)   { l.logger.Debugf(msg, items...) }

// Open opens the database at path, creating the directory if needed.
// InMemory opens a database that lives only as long as the Backend.
func Open(path string, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if path == InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			if err := os.MkdirAll(path, 0o755); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		case !info.IsDir():
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &loggerAdapter{logger: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Backend{db: db, location: path, logger: logger}, nil
}

// Location returns the database directory or ":memory:"
func (b *Backend) Location() string {
	return b.location
}

// Close closes the database
func (b *Backend) Close() error {
	return b.db.Close()
}

func tablePrefix(table *dbstore.Table) []byte {
	return []byte(table.Name + ":")
}

// rowKey flips the sign bit so negative keys sort before positive ones
func rowKey(table *dbstore.Table, id int64) []byte {
	prefix := tablePrefix(table)
	buf := make([]byte, len(prefix)+8)
	n := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[n:], uint64(id)^(1<<63))
	return buf
}

// ReadAll iterates the table prefix in key order
func (b *Backend) ReadAll(ctx context.Context, table *dbstore.Table) ([]dbstore.Row, error) {
	rows := []dbstore.Row{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = tablePrefix(table)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				row, err := table.UnmarshalRow(val)
				if err != nil {
					return fmt.Errorf("failed to decode %x: %w", iter.Item().Key(), err)
				}
				rows = append(rows, row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceAll deletes the table prefix and writes rows in one transaction
func (b *Backend) ReplaceAll(ctx context.Context, table *dbstore.Table, rows []dbstore.Row) error {
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = tablePrefix(table)
		opts.PrefetchValues = false

		var stale [][]byte
		iter := txn.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		seen := make(map[int64]struct{}, len(rows))
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := table.KeyOf(row)
			if _, dup := seen[id]; dup {
				return &duplicateKeyError{id: id}
			}
			seen[id] = struct{}{}

			data, err := table.MarshalRow(row)
			if err != nil {
				return fmt.Errorf("failed to encode row: %w", err)
			}
			if err := txn.Set(rowKey(table, id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Migrate is a no-op; Badger keys need no schema
func (b *Backend) Migrate(ctx context.Context, _ fs.FS) error {
	return nil
}

type duplicateKeyError struct {
	id int64
}

func (e *duplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %d in snapshot", e.id)
}

// Classify maps Badger errors onto storage kinds
func (b *Backend) Classify(err error) errors.Kind {
	var dup *duplicateKeyError
	switch {
	case stderrors.As(err, &dup):
		return errors.KindUniqueViolation
	case stderrors.Is(err, badger.ErrConflict):
		return errors.KindDeadlock
	case stderrors.Is(err, badger.ErrBlockedWrites):
		return errors.KindTimeout
	}
	return dbstore.ClassifyNetwork(err)
}
