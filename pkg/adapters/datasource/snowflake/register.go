package snowflake

import "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "snowflake",
			DisplayName: "Snowflake",
			Description: "Snowflake, bulk loads through a temporary internal stage",
			BulkLoad:    true,
		},
		Factory: datasource.Opener(FromMap, NewAdapter),
	})
}
