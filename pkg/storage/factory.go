package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// BackendConstructor creates a backend instance from its config
type BackendConstructor func(ctx context.Context, cfg Config) (Backend, error)

var (
	registryMu      sync.RWMutex
	backendRegistry = make(map[string]BackendConstructor)
)

// RegisterBackend registers a backend constructor. Backend packages call it from init().
func RegisterBackend(backendType string, constructor BackendConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backendRegistry[backendType] = constructor
}

// RegisteredTypes lists the backend types available in this binary
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(backendRegistry))
	for t := range backendRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Factory creates storage backends from configuration
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates a backend from config
func (f *Factory) Create(ctx context.Context, cfg Config) (Backend, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("backend %s is disabled", cfg.Name)
	}

	registryMu.RLock()
	constructor, ok := backendRegistry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend type %q: %w", cfg.Type, ErrInvalidConfig)
	}

	return constructor(ctx, cfg)
}

// CreateAll creates every enabled backend. On failure the backends created so
// far are closed.
func (f *Factory) CreateAll(ctx context.Context, configs []Config) ([]Backend, error) {
	backends := make([]Backend, 0, len(configs))

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		backend, err := f.Create(ctx, cfg)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to create backend %s: %w", cfg.Name, err),
				CloseAll(backends),
			)
		}

		backends = append(backends, backend)
	}

	return backends, nil
}

// CloseAll closes every backend and joins the errors
func CloseAll(backends []Backend) error {
	var errs []error
	for _, b := range backends {
		if err := b.Close(); err != nil {
			errs = append(errs, WrapError(b.Name(), "close", err))
		}
	}
	return errors.Join(errs...)
}
