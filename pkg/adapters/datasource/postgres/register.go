package postgres

import "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "PostgreSQL 12+, Aurora PostgreSQL, Supabase",
			BulkLoad:    true,
		},
		Factory: datasource.Opener(FromMap, NewAdapter),
	})
}
