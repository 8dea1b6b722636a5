/*
Package datastore defines the core contracts of the persistence engine.

The main interface is DataStore[T], which loads and saves a whole collection:

	type DataStore[T any] interface {
	    Load(ctx context.Context) ([]T, error)
	    Save(ctx context.Context, entities []T) (int, error)
	}

Every Save overwrites the backing medium with the given snapshot; there is no
merge or partial write. Entities implement Entity so that repositories can
assign identities.

Implementations:
  - filestore: a single file encoded by a serializer.Codec (JSON, XML, CSV, YAML, TOML)
  - dbstore: a database context over a dbstore.Backend (sqldb, ddb, rediskv, badgerkv)
  - mock: in-memory store for testing, with error injection
*/
package datastore
