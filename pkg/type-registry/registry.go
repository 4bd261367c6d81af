// Package typeregistry tracks which fragment resource types are eligible for
// deferred inclusion, as contributed by dynamically bound providers.
//
// Providers come and go independently of the filter's activation cycle, while
// membership checks run on every request. The registry therefore publishes its
// entry set through an atomic pointer: readers always iterate an immutable
// snapshot, and writers replace the whole slice (copy-on-write).
package typeregistry

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ResourceTypesProvider supplies the resource types its owner wants handled by
// deferred inclusion. Implementations are externally owned; the registry never
// manages their lifecycle.
type ResourceTypesProvider interface {
	ResourceTypes() ([]string, error)
}

// Volatile marks a provider whose resource type list may change between calls.
// The registry queries such a provider live on every membership check instead
// of snapshotting its answer at registration time.
type Volatile interface {
	VolatileResourceTypes()
}

// entry wraps one registered provider.
// cached is nil for live (volatile) entries and holds an immutable snapshot
// captured at registration otherwise.
type entry struct {
	provider ResourceTypesProvider
	cached   []string
}

func (e *entry) resourceTypes() ([]string, error) {
	if e.cached == nil {
		return e.provider.ResourceTypes()
	}
	return e.cached, nil
}

// Registry is a concurrency-safe set of resource type providers.
// The zero value is not usable; use New.
type Registry struct {
	mu      sync.Mutex
	entries atomic.Pointer[[]*entry]
	log     zerolog.Logger
}

// New returns an empty registry logging through the given logger.
func New(log zerolog.Logger) *Registry {
	r := &Registry{log: log}
	r.entries.Store(&[]*entry{})
	return r
}

// Register adds the provider to the registry.
// Unless the provider is marked Volatile, its resource types are captured now
// and the snapshot is what the provider contributes for as long as it stays
// registered. A snapshot query failure registers the provider with an empty
// contribution.
func (r *Registry) Register(p ResourceTypesProvider) {
	e := &entry{provider: p}
	if _, volatile := p.(Volatile); !volatile {
		types, err := p.ResourceTypes()
		if err != nil {
			r.log.Warn().Err(err).Msg("Provider failed to list resource types at registration")
			types = []string{}
		}
		e.cached = append([]string{}, types...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	old := *r.entries.Load()
	next := make([]*entry, len(old), len(old)+1)
	copy(next, old)
	next = append(next, e)
	r.entries.Store(&next)
}

// Unregister removes the entry holding the given provider, matched by
// identity. Unregistering a provider that is not registered is a no-op.
func (r *Registry) Unregister(p ResourceTypesProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := *r.entries.Load()
	next := make([]*entry, 0, len(old))
	for _, e := range old {
		if e.provider == p {
			continue
		}
		next = append(next, e)
	}
	if len(next) != len(old) {
		r.entries.Store(&next)
	}
}

// ContainsType reports whether any registered provider contributes the given
// resource type. A live query that fails contributes no match; the failure is
// logged and the entry stays registered.
func (r *Registry) ContainsType(resourceType string) bool {
	for _, e := range *r.entries.Load() {
		types, err := e.resourceTypes()
		if err != nil {
			r.log.Warn().Err(err).Msg("Provider failed to list resource types")
			continue
		}
		for _, t := range types {
			if t == resourceType {
				return true
			}
		}
	}
	return false
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(*r.entries.Load())
}
