/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package ddb provides a DynamoDB implementation of dbstore.Backend.

The backend follows a single-table design. Every entity table is one
partition, and keys are built from macros:

	ddb.KeyTemplate{
	    PK: "{table}",           // "products"
	    SK: "{table}#{id}",      // "products#42"
	}

Each item carries the row as a JSON document in the Data attribute and the
table name in EntityType, so several entity types can share one DynamoDB
table.

ReplaceAll writes through TransactWriteItems when the change set fits the
100 item limit. Larger snapshots are written with BatchWriteItem in chunks of
25, retrying unprocessed items. Migrate creates the table on first use.

Known limit: a change set of more than 100 puts and deletes is not atomic.
A failure part way through leaves the partition holding a mix of the old and
new snapshots; saving the same snapshot again converges it.

Connection strings look like:

	region=us-east-1;table=Catalog;endpoint=http://localhost:8000;accessKey=local;secretKey=local
*/
package ddb
