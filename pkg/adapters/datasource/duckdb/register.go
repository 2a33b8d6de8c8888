package duckdb

import "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "duckdb",
			DisplayName: "DuckDB",
			Description: "Local DuckDB database file",
			BulkLoad:    true,
		},
		Factory: datasource.Opener(FromMap, NewAdapter),
	})
}
