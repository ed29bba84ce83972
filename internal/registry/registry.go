// Package registry lets modules share services by typed key.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nfrund/eventdesk/internal/config"
)

// Key names a service of type T, for example "contact.service".
type Key[T any] string

// Registry holds the services wired at startup along with the configuration.
// It is safe for concurrent use.
type Registry struct {
	cfg config.Provider

	mu       sync.RWMutex
	services map[string]any
}

// New creates an empty registry.
func New(cfg config.Provider) *Registry {
	return &Registry{cfg: cfg, services: make(map[string]any)}
}

// Config returns the configuration provider stored in the registry.
func (r *Registry) Config() config.Provider {
	return r.cfg
}

// Keys returns the names of all registered services, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.services))
	for k := range r.services {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set stores value under key, replacing any earlier value.
func Set[T any](r *Registry, key Key[T], value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[string(key)] = value
}

// Get returns the service stored under key. A value stored under the same
// name with a different type is reported as missing.
func Get[T any](r *Registry, key Key[T]) (T, bool) {
	r.mu.RLock()
	val, ok := r.services[string(key)]
	r.mu.RUnlock()

	result, ok := val.(T)
	if !ok {
		var zero T
		return zero, false
	}
	return result, true
}

// MustGet is Get for dependencies the caller cannot run without.
func MustGet[T any](r *Registry, key Key[T]) T {
	val, ok := Get(r, key)
	if !ok {
		panic(fmt.Sprintf("service not found for key: %v", key))
	}
	return val
}
