/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package catalog is the business module of the product catalog. It owns
// the Product entity, its database context registrar and schema
// migrations. It is the only package that names a concrete entity type to
// the database layer.
package catalog
