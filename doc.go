/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package persistence loads and saves whole entity collections through a
single abstraction, datastore.DataStore, whether the collection lives in a
flat file or a database.

The backing medium is chosen at startup from configuration:

  - Kind "File" picks a file provider (Json, Xml, Csv, Yaml, Toml) and stores
    the collection at Storage.FilePath, or Data/{Type}{ext}.
  - Kind "Database" picks a database provider (SqlServer, Sqlite,
    SqliteNative, PostgreSQL, MySql, DynamoDB, Redis, Badger) and binds the
    contexts of the business module.

Providers register themselves with the registry package when imported;
provider/all imports every bundled provider.

Basic Usage:

	cfg, _ := config.Load(config.Options{File: "appsettings.json"})

	sel, err := selector.Select[*catalog.Product](ctx, selector.Options{
		Config:   cfg,
		Business: catalog.Module,
	})
	if err != nil {
		log.Fatal(err) // configuration errors are fatal
	}
	defer sel.Close()

	products := repository.New[*catalog.Product](sel.Store)
	uow := persistence.NewUnitOfWork()
	_ = persistence.Register(uow, products)

	_, _ = products.Add(ctx, &catalog.Product{Name: "Laptop"})
	_, err = uow.SaveChanges(ctx)

Repositories keep an in-memory snapshot; Add, Update and Delete report
validation outcomes as repository.OperationResult values and Save writes
the whole snapshot back.
*/
package persistence
