/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package all registers every bundled file and database provider with
// registry.Default. Import it for its side effects:
//
//	import _ "github.com/suparena/persistence/provider/all"
package all

import (
	_ "github.com/suparena/persistence/provider/database/badger"
	_ "github.com/suparena/persistence/provider/database/dynamodb"
	_ "github.com/suparena/persistence/provider/database/mysql"
	_ "github.com/suparena/persistence/provider/database/postgres"
	_ "github.com/suparena/persistence/provider/database/redis"
	_ "github.com/suparena/persistence/provider/database/sqlite"
	_ "github.com/suparena/persistence/provider/database/sqlitenative"
	_ "github.com/suparena/persistence/provider/database/sqlserver"
	_ "github.com/suparena/persistence/provider/filebase/csv"
	_ "github.com/suparena/persistence/provider/filebase/json"
	_ "github.com/suparena/persistence/provider/filebase/toml"
	_ "github.com/suparena/persistence/provider/filebase/xml"
	_ "github.com/suparena/persistence/provider/filebase/yaml"
)
