package datasource

import (
	"context"

	"go.uber.org/zap"
)

// DatasourceAdapterFactory opens adapters by warehouse type.
type DatasourceAdapterFactory interface {
	NewAdapter(ctx context.Context, dsType string, config map[string]any) (Adapter, error)
	ListTypes() []DatasourceAdapterInfo
}

// registryFactory resolves types through the package registry and hands each
// adapter a logger named after its type.
type registryFactory struct {
	logger *zap.Logger
}

func NewDatasourceAdapterFactory(logger *zap.Logger) DatasourceAdapterFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &registryFactory{logger: logger}
}

func (f *registryFactory) NewAdapter(ctx context.Context, dsType string, config map[string]any) (Adapter, error) {
	open := GetFactory(dsType)
	if open == nil {
		return nil, unknownTypeError(dsType)
	}
	return open(ctx, config, f.logger.Named(dsType))
}

func (f *registryFactory) ListTypes() []DatasourceAdapterInfo {
	return RegisteredAdapters()
}

var _ DatasourceAdapterFactory = (*registryFactory)(nil)
