package probe

import (
	"sort"
	"sync"

	"github.com/probelab/probectl/internal/errors"
)

// The registry is a static table from driver name to constructor, built
// at process start from each driver file's init function.
var (
	registryMu sync.RWMutex
	registry   = map[string]func() Driver{}
)

// Register makes a driver constructor available under the given name.
// Called from driver init functions; a duplicate name panics because it
// is a programming error, not a runtime condition.
func Register(name string, ctor func() Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic("probe: duplicate driver registration: " + name)
	}
	registry[name] = ctor
}

// New constructs the named driver.
func New(name string) (Driver, error) {
	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.New().WithData(ErrUnknownDriver, name)
	}

	return ctor(), nil
}

// List returns the registered driver names, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
