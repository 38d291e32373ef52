package storage

import (
	"fmt"

	"aviary/internal/domain/service"
	"aviary/pkg/errors"
)

// Registry dispatches a backend selector string to a registered
// implementation. Unknown selectors fail closed.
type Registry struct {
	backends    map[string]service.StorageBackend
	defaultName string
}

func NewRegistry(defaultName string) *Registry {
	return &Registry{
		backends:    make(map[string]service.StorageBackend),
		defaultName: defaultName,
	}
}

func (r *Registry) Register(backend service.StorageBackend) {
	r.backends[backend.Name()] = backend
}

// Resolve returns the backend for the selector, or the configured default
// when the selector is empty.
func (r *Registry) Resolve(selector string) (service.StorageBackend, error) {
	if selector == "" {
		selector = r.defaultName
	}

	backend, ok := r.backends[selector]
	if !ok {
		return nil, errors.BadRequest(fmt.Sprintf("Unknown storage service: %s", selector), nil)
	}

	return backend, nil
}
