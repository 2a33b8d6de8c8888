package mssql

import "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Description: "SQL Server 2019+, Azure SQL Database",
			BulkLoad:    false,
		},
		Factory: datasource.Opener(FromMap, NewAdapter),
	})
}
