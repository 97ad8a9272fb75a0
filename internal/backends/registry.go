package backends

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

// Registry maps backend ids to adapter instances. It is built once at
// startup and read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
	}
}

// Register adds a backend under the given id.
func (r *Registry) Register(id string, backend Backend) error {
	if backend == nil {
		return fmt.Errorf("backend cannot be nil")
	}
	if id == "" {
		return fmt.Errorf("backend id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[id]; exists {
		return fmt.Errorf("backend %q already registered", id)
	}
	r.backends[id] = backend
	return nil
}

// Get returns the backend registered under id.
func (r *Registry) Get(id string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backend, ok := r.backends[id]
	return backend, ok
}

// IDs lists registered backend ids in stable order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.backends))
	for id := range r.backends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close releases every registered backend's resources.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs error
	for id, backend := range r.backends {
		if err := backend.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close backend %s: %w", id, err))
		}
	}
	return errs
}
