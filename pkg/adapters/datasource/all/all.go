// Package all registers every warehouse adapter.
package all

import (
	_ "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/clickhouse" // Register clickhouse adapter
	_ "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/duckdb"     // Register duckdb adapter
	_ "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/mssql"      // Register sqlserver adapter
	_ "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/postgres"   // Register postgres adapter
	_ "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/snowflake"  // Register snowflake adapter
)
