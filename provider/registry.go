package provider

import (
	"sort"
	"sync"

	apperrors "github.com/kbukum/scoutkit/errors"
)

// Factory constructs a provider from settings.
type Factory func(Settings) (Provider, error)

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
)

// Register adds a named provider factory. Vendors call this from init.
// Registering an empty name or nil factory panics.
func Register(name string, factory Factory) {
	if name == "" || factory == nil {
		panic("provider: Register requires a name and a factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Open constructs the named provider with the given settings.
func Open(name string, settings Settings) (Provider, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("provider", name)
	}
	return factory(settings)
}

// Names returns the registered provider names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
