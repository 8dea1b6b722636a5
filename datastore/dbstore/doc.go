/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package dbstore persists whole entity collections through a database backend.

The package is split between a type-agnostic side and a typed side:

  - Backend is a database context factory implemented by datastore/sqldb,
    datastore/ddb, datastore/rediskv and datastore/badgerkv. It moves Rows
    described by a Table.
  - Context[T] binds a Backend and a Table to an entity type, and Store[T]
    exposes it as a datastore.DataStore[T].

Provider registrars configure a Backend through an OptionsBuilder. A context
registrar owned by the business module turns the built Options into contexts
and binds them into a Binder:

	func (Registrar) RegisterDbContext(b *dbstore.Binder, configure dbstore.ConfigureFunc) error {
		opts, err := dbstore.Configure(configure, nil)
		if err != nil {
			return err
		}
		table, err := dbstore.TableOf[*Product]("products")
		if err != nil {
			return err
		}
		return dbstore.Bind(b, dbstore.NewContext[*Product](opts, table, migrations))
	}

Save deletes every row and inserts the snapshot as one unit. Backend errors
are classified by the backend and wrapped once into errors.StorageError.
*/
package dbstore
