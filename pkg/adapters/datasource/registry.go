package datasource

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DatasourceAdapterInfo describes a compiled-in warehouse adapter.
type DatasourceAdapterInfo struct {
	Type        string `json:"type"`         // matches WAREHOUSE_TYPE
	DisplayName string `json:"display_name"` // also used as the SQL dialect name in prompts
	Description string `json:"description"`
	BulkLoad    bool   `json:"bulk_load"` // adapter implements BulkLoader
}

// AdapterFactory opens a warehouse connection from a generic config map.
type AdapterFactory func(ctx context.Context, config map[string]any, logger *zap.Logger) (Adapter, error)

// DatasourceAdapterRegistration pairs an adapter's info with its factory.
type DatasourceAdapterRegistration struct {
	Info    DatasourceAdapterInfo
	Factory AdapterFactory
}

// Opener adapts an adapter package's FromMap/NewAdapter pair into an AdapterFactory.
func Opener[C any, A Adapter](
	fromMap func(map[string]any) (C, error),
	open func(context.Context, C, *zap.Logger) (A, error),
) AdapterFactory {
	return func(ctx context.Context, config map[string]any, logger *zap.Logger) (Adapter, error) {
		cfg, err := fromMap(config)
		if err != nil {
			return nil, err
		}
		return open(ctx, cfg, logger)
	}
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]DatasourceAdapterRegistration)
)

// Register makes an adapter available by type. Adapter packages call it from
// init; registering the same type twice panics.
func Register(reg DatasourceAdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[reg.Info.Type]; dup {
		panic("datasource: Register called twice for " + reg.Info.Type)
	}
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters lists the compiled-in adapters ordered by type.
func RegisteredAdapters() []DatasourceAdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	infos := make([]DatasourceAdapterInfo, 0, len(registry))
	for _, reg := range registry {
		infos = append(infos, reg.Info)
	}
	slices.SortFunc(infos, func(a, b DatasourceAdapterInfo) int { return strings.Compare(a.Type, b.Type) })
	return infos
}

// GetFactory returns nil for an unknown type.
func GetFactory(dsType string) AdapterFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[dsType].Factory
}

func IsRegistered(dsType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dsType]
	return ok
}

func unknownTypeError(dsType string) error {
	var known []string
	for _, info := range RegisteredAdapters() {
		known = append(known, info.Type)
	}
	return fmt.Errorf("unsupported warehouse type: %s (available: %s)", dsType, strings.Join(known, ", "))
}
