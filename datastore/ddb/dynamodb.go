/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/errors"
)

const (
	// maxTransactItems is the DynamoDB limit for TransactWriteItems
	maxTransactItems = 100
	// maxBatchItems is the DynamoDB limit for BatchWriteItem
	maxBatchItems = 25

	tableActiveTimeout = 2 * time.Minute
)

// API is the subset of the DynamoDB client used by Backend
type API interface {
	sdk.QueryAPIClient
	sdk.DescribeTableAPIClient
	TransactWriteItems(ctx context.Context, params *sdk.TransactWriteItemsInput, optFns ...func(*sdk.Options)) (*sdk.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
	CreateTable(ctx context.Context, params *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
}

// KeyTemplate builds the partition and sort keys of an item. The macros
// {table} and {id} expand to the entity table name and key value.
type KeyTemplate struct {
	PK string
	SK string
}

// DefaultKeyTemplate stores each entity table as one partition
var DefaultKeyTemplate = KeyTemplate{PK: "{table}", SK: "{table}#{id}"}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

func expandMacros(template string, values map[string]string) string {
	return macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
		return values[strings.Trim(macro, "{}")]
	})
}

// item is the stored shape of one row in the single-table layout
type item struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Data       string `dynamodbav:"Data"`
}

// Backend implements dbstore.Backend on a single DynamoDB table.
type Backend struct {
	client    API
	tableName string
	keys      KeyTemplate
	location  string
	logger    *zap.Logger
}

var _ dbstore.Backend = (*Backend)(nil)

// Option configures a Backend
type Option func(*Backend)

// WithKeyTemplate overrides DefaultKeyTemplate
func WithKeyTemplate(keys KeyTemplate) Option {
	return func(b *Backend) {
		b.keys = keys
	}
}

// WithLogger sets the backend logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithLocation overrides the location reported to users
func WithLocation(location string) Option {
	return func(b *Backend) {
		b.location = location
	}
}

// New creates a Backend storing items in tableName
func New(client API, tableName string, opts ...Option) *Backend {
	b := &Backend{
		client:    client,
		tableName: tableName,
		keys:      DefaultKeyTemplate,
		location:  "dynamodb://" + tableName,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Location returns the table location
func (b *Backend) Location() string {
	return b.location
}

// Close is a no-op; the SDK client holds no connections that need releasing
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) partitionKey(table *dbstore.Table) string {
	return expandMacros(b.keys.PK, map[string]string{"table": table.Name})
}

func (b *Backend) sortKey(table *dbstore.Table, id int64) string {
	return expandMacros(b.keys.SK, map[string]string{
		"table": table.Name,
		"id":    strconv.FormatInt(id, 10),
	})
}

func (b *Backend) queryPartition(ctx context.Context, table *dbstore.Table, visit func(item) error) error {
	pk := b.partitionKey(table)
	paginator := sdk.NewQueryPaginator(b.client, &sdk.QueryInput{
		TableName:                &b.tableName,
		KeyConditionExpression:   aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{"#pk": "PK"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ConsistentRead: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, raw := range page.Items {
			var it item
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return fmt.Errorf("failed to unmarshal item: %w", err)
			}
			if it.EntityType != "" && it.EntityType != table.Name {
				continue
			}
			if err := visit(it); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadAll queries the table partition and decodes every item, ordered by key
func (b *Backend) ReadAll(ctx context.Context, table *dbstore.Table) ([]dbstore.Row, error) {
	rows := []dbstore.Row{}
	err := b.queryPartition(ctx, table, func(it item) error {
		row, err := table.UnmarshalRow([]byte(it.Data))
		if err != nil {
			return fmt.Errorf("failed to decode item %s: %w", it.SK, err)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return table.KeyOf(rows[i]) < table.KeyOf(rows[j])
	})
	return rows, nil
}

// ReplaceAll writes every row and deletes stale items. Up to 100 changes go
// through one TransactWriteItems call; larger snapshots fall back to batched
// writes, which DynamoDB does not apply atomically.
func (b *Backend) ReplaceAll(ctx context.Context, table *dbstore.Table, rows []dbstore.Row) error {
	pk := b.partitionKey(table)

	var stale []string
	err := b.queryPartition(ctx, table, func(it item) error {
		stale = append(stale, it.SK)
		return nil
	})
	if err != nil {
		return err
	}

	puts := make([]map[string]types.AttributeValue, 0, len(rows))
	keep := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		data, err := table.MarshalRow(row)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		sk := b.sortKey(table, table.KeyOf(row))
		if _, dup := keep[sk]; dup {
			return &duplicateKeyError{key: sk}
		}
		keep[sk] = struct{}{}

		av, err := attributevalue.MarshalMap(item{PK: pk, SK: sk, EntityType: table.Name, Data: string(data)})
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
		puts = append(puts, av)
	}

	var deletes []map[string]types.AttributeValue
	for _, sk := range stale {
		if _, ok := keep[sk]; ok {
			continue
		}
		deletes = append(deletes, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		})
	}

	if len(puts)+len(deletes) == 0 {
		return nil
	}
	if len(puts)+len(deletes) <= maxTransactItems {
		return b.transactWrite(ctx, puts, deletes)
	}

	b.logger.Warn("snapshot exceeds transaction limit, using batched writes",
		zap.String("table", table.Name),
		zap.Int("puts", len(puts)),
		zap.Int("deletes", len(deletes)))
	return b.batchWrite(ctx, puts, deletes)
}

func (b *Backend) transactWrite(ctx context.Context, puts, deletes []map[string]types.AttributeValue) error {
	items := make([]types.TransactWriteItem, 0, len(puts)+len(deletes))
	for _, av := range puts {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: &b.tableName, Item: av},
		})
	}
	for _, key := range deletes {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{TableName: &b.tableName, Key: key},
		})
	}
	_, err := b.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{TransactItems: items})
	return err
}

func (b *Backend) batchWrite(ctx context.Context, puts, deletes []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, 0, len(puts)+len(deletes))
	for _, av := range puts {
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}
	for _, key := range deletes {
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
	}

	for start := 0; start < len(requests); start += maxBatchItems {
		end := start + maxBatchItems
		if end > len(requests) {
			end = len(requests)
		}
		if err := b.writeBatch(ctx, requests[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// writeBatch retries unprocessed items with linear backoff
func (b *Backend) writeBatch(ctx context.Context, batch []types.WriteRequest) error {
	const maxRetries = 5
	pending := map[string][]types.WriteRequest{b.tableName: batch}

	for attempt := 0; ; attempt++ {
		out, err := b.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 || len(out.UnprocessedItems[b.tableName]) == 0 {
			return nil
		}
		if attempt >= maxRetries {
			return &types.ProvisionedThroughputExceededException{
				Message: aws.String(fmt.Sprintf("%d items unprocessed after %d retries", len(out.UnprocessedItems[b.tableName]), maxRetries)),
			}
		}
		pending = out.UnprocessedItems

		backoff := time.Duration(attempt+1) * 50 * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Migrate creates the table with PK/SK string keys when it does not exist.
// Schema scripts do not apply to DynamoDB.
func (b *Backend) Migrate(ctx context.Context, _ fs.FS) error {
	_, err := b.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: &b.tableName})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !stderrors.As(err, &notFound) {
		return err
	}

	b.logger.Info("creating table", zap.String("table", b.tableName))
	_, err = b.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: &b.tableName,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !stderrors.As(err, &inUse) {
			return err
		}
	}

	waiter := sdk.NewTableExistsWaiter(b.client)
	return waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: &b.tableName}, tableActiveTimeout)
}

type duplicateKeyError struct {
	key string
}

func (e *duplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate item key %s in snapshot", e.key)
}

// Classify maps DynamoDB errors onto storage kinds
func (b *Backend) Classify(err error) errors.Kind {
	var dup *duplicateKeyError
	if stderrors.As(err, &dup) {
		return errors.KindUniqueViolation
	}

	var canceled *types.TransactionCanceledException
	if stderrors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			switch aws.ToString(reason.Code) {
			case "TransactionConflict":
				return errors.KindDeadlock
			case "ConditionalCheckFailed", "DuplicateItem":
				return errors.KindUniqueViolation
			case "ThrottlingError", "ProvisionedThroughputExceeded":
				return errors.KindTimeout
			}
		}
		return errors.KindUnexpected
	}

	var conflict *types.TransactionConflictException
	if stderrors.As(err, &conflict) {
		return errors.KindDeadlock
	}
	var throughput *types.ProvisionedThroughputExceededException
	if stderrors.As(err, &throughput) {
		return errors.KindTimeout
	}
	var limit *types.RequestLimitExceeded
	if stderrors.As(err, &limit) {
		return errors.KindTimeout
	}
	var internal *types.InternalServerError
	if stderrors.As(err, &internal) {
		return errors.KindConnectivity
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "RequestLimitExceeded":
			return errors.KindTimeout
		case "ServiceUnavailable", "InternalFailure":
			return errors.KindConnectivity
		}
	}
	return dbstore.ClassifyNetwork(err)
}
