package repository

import (
	"sync"
)

// Resource is a durable, independently addressable content fragment.
type Resource struct {
	// Path is the repository path of the resource, without selectors or
	// extension.
	Path string
	// ResourceType determines which component renders the resource and
	// whether it is eligible for deferred inclusion.
	ResourceType string
	// Content is the rendered body of the resource itself.
	Content []byte
	// Children are repository paths of fragments included when rendering
	// this resource.
	Children []string
}

// Repository is a store of durable resources.
//
// Implementations must be thread-safe!
type Repository interface {
	// Get returns the resource stored under the given path, if it exists.
	// The boolean indicates whether the resource was found.
	Get(path string) (Resource, bool, error)
	// Put stores the given resource under its path, replacing any previous
	// resource stored there.
	Put(res Resource) error
	// Delete removes the resource stored under the given path.
	// Deleting an absent path is a no-op.
	Delete(path string) error
}

// MemRepository is an in-memory Repository.
type MemRepository struct {
	mutex *sync.RWMutex
	db    map[string]Resource
}

func NewMemRepository() MemRepository {
	return MemRepository{
		mutex: &sync.RWMutex{},
		db:    make(map[string]Resource),
	}
}

func (m MemRepository) Get(path string) (Resource, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	res, ok := m.db[path]
	return res, ok, nil
}

func (m MemRepository) Put(res Resource) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[res.Path] = res
	return nil
}

func (m MemRepository) Delete(path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.db, path)
	return nil
}
