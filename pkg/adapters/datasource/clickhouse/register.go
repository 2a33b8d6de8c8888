package clickhouse

import "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "clickhouse",
			DisplayName: "ClickHouse",
			Description: "ClickHouse 23+ over the native protocol",
			BulkLoad:    false,
		},
		Factory: datasource.Opener(FromMap, NewAdapter),
	})
}
