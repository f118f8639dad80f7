// Package stores provides a registry of storage backends for the ledger.
package stores

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ArionMiles/spendbook/pkg/api"
	"github.com/ArionMiles/spendbook/pkg/config"
)

// Backend opens a Store from the application configuration.
type Backend interface {
	// Name returns the backend name (e.g., "csv", "sqlite").
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Open creates a store instance. Stores holding connections also implement io.Closer.
	Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.Store, error)
}

// Registry manages available storage backends.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
	}
}

// Register adds a backend.
func (r *Registry) Register(backend Backend) error {
	name := backend.Name()
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("storage backend %q already registered", name)
	}
	r.backends[name] = backend
	return nil
}

// Get returns a backend by name.
func (r *Registry) Get(name string) (Backend, error) {
	backend, exists := r.backends[name]
	if !exists {
		return nil, fmt.Errorf("storage backend %q not found", name)
	}
	return backend, nil
}

// List returns all registered backends sorted by name.
func (r *Registry) List() []Backend {
	backends := make([]Backend, 0, len(r.backends))
	for _, backend := range r.backends {
		backends = append(backends, backend)
	}
	sort.Slice(backends, func(i, j int) bool {
		return backends[i].Name() < backends[j].Name()
	})
	return backends
}

// Open creates a store from the named backend.
func (r *Registry) Open(ctx context.Context, name string, cfg *config.Config, logger *slog.Logger) (api.Store, error) {
	backend, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := backend.Open(ctx, cfg, logger.With("component", "store", "backend", name))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", name, err)
	}
	return store, nil
}

// Default returns a registry with every built-in backend registered.
func Default() *Registry {
	r := NewRegistry()
	for _, b := range []Backend{CSV{}, JSON{}, SQLite{}, Postgres{}} {
		// Built-in names are distinct.
		_ = r.Register(b)
	}
	return r
}
