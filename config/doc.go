/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package config loads storage options and named connection strings.

A JSON configuration file looks like:

	{
	  "Storage": {
	    "Kind": "Database",
	    "Provider": "PostgreSQL",
	    "ConnectionStringName": "Catalog"
	  },
	  "ConnectionStrings": {
	    "Catalog": "postgres://app@localhost:5432/catalog"
	  },
	  "Log": { "Env": "prod" }
	}

Every key can be overridden from the environment with the PERSISTENCE_
prefix and underscores for dots, e.g. PERSISTENCE_STORAGE_PROVIDER=Sqlite.
*/
package config
