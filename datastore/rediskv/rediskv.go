/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package rediskv implements dbstore.Backend on Redis hashes.
//
// Each entity table is one hash at {prefix}{table}; fields are entity keys
// and values are JSON rows. ReplaceAll runs DEL and HSET inside MULTI/EXEC
// so readers never observe a partially replaced table.
package rediskv

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/errors"
)

const DefaultPrefix = "persistence:"

// Backend is a Redis-backed dbstore.Backend
type Backend struct {
	client   redis.UniversalClient
	prefix   string
	location string
	logger   *zap.Logger
}

var _ dbstore.Backend = (*Backend)(nil)

// Option configures a Backend
type Option func(*Backend)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(b *Backend) {
		b.prefix = prefix
	}
}

// WithLogger sets the backend logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// ParseURL parses a redis:// or rediss:// URL. A bare host:port is accepted.
func ParseURL(raw string) (*redis.Options, error) {
	if !strings.Contains(raw, "://") {
		raw = "redis://" + raw
	}
	opt, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return opt, nil
}

// Redact removes the password from a redis URL
func Redact(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "redis://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "redis://"
	}
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			u.User = url.User(name)
		} else {
			u.User = nil
		}
	}
	u.RawQuery = ""
	return u.String()
}

// New creates a Backend over client
func New(client redis.UniversalClient, location string, opts ...Option) *Backend {
	b := &Backend{
		client:   client,
		prefix:   DefaultPrefix,
		location: location,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) key(table *dbstore.Table) string {
	return b.prefix + table.Name
}

// Location returns the redacted server location
func (b *Backend) Location() string {
	return b.location
}

// Close closes the client
func (b *Backend) Close() error {
	return b.client.Close()
}

// ReadAll reads the table hash, ordered by key
func (b *Backend) ReadAll(ctx context.Context, table *dbstore.Table) ([]dbstore.Row, error) {
	fields, err := b.client.HGetAll(ctx, b.key(table)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	rows := make([]dbstore.Row, 0, len(fields))
	for field, value := range fields {
		row, err := table.UnmarshalRow([]byte(value))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s field %s: %w", b.key(table), field, err)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return table.KeyOf(rows[i]) < table.KeyOf(rows[j])
	})
	return rows, nil
}

// ReplaceAll replaces the table hash inside MULTI/EXEC
func (b *Backend) ReplaceAll(ctx context.Context, table *dbstore.Table, rows []dbstore.Row) error {
	values := make(map[string]any, len(rows))
	for _, row := range rows {
		data, err := table.MarshalRow(row)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		field := strconv.FormatInt(table.KeyOf(row), 10)
		if _, dup := values[field]; dup {
			return &duplicateKeyError{field: field}
		}
		values[field] = string(data)
	}

	key := b.key(table)
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Debug("replaced hash", zap.String("key", key), zap.Int("rows", len(rows)))
	return nil
}

// Migrate is a no-op; Redis hashes need no schema
func (b *Backend) Migrate(ctx context.Context, _ fs.FS) error {
	return nil
}

type duplicateKeyError struct {
	field string
}

func (e *duplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate hash field %s in snapshot", e.field)
}

// Classify maps Redis errors onto storage kinds
func (b *Backend) Classify(err error) errors.Kind {
	var dup *duplicateKeyError
	if stderrors.As(err, &dup) {
		return errors.KindUniqueViolation
	}
	if stderrors.Is(err, redis.TxFailedErr) {
		return errors.KindDeadlock
	}
	if stderrors.Is(err, redis.ErrClosed) {
		return errors.KindConnectivity
	}

	var sysErr syscall.Errno
	if stderrors.As(err, &sysErr) {
		switch sysErr {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ECONNABORTED:
			return errors.KindConnectivity
		case syscall.ETIMEDOUT:
			return errors.KindTimeout
		}
	}

	var redisErr redis.Error
	if stderrors.As(err, &redisErr) {
		msg := redisErr.Error()
		for _, prefix := range []string{"LOADING", "BUSY", "TRYAGAIN", "CLUSTERDOWN", "MASTERDOWN", "READONLY"} {
			if strings.HasPrefix(msg, prefix) {
				return errors.KindConnectivity
			}
		}
		return errors.KindUnexpected
	}
	return dbstore.ClassifyNetwork(err)
}
