package engine

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]EntityDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if an entity with the same name is already registered or the
// definition is internally inconsistent; definitions are static
// configuration, so a bad one is a programming error caught at init.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Name))
	}
	if err := validateDefinition(def); err != nil {
		panic(fmt.Sprintf("invalid entity definition %s: %v", def.Name, err))
	}

	registry[def.Name] = def
}

// validateDefinition checks that key and resolution specs only reference
// declared fields.
func validateDefinition(def EntityDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("empty name")
	}
	if def.Table == "" {
		return fmt.Errorf("empty table")
	}
	if len(def.Key.Fields) == 0 {
		return fmt.Errorf("key spec has no fields")
	}
	for _, name := range def.Key.Fields {
		if _, ok := def.Field(name); !ok {
			return fmt.Errorf("key field %q not declared", name)
		}
	}
	if r := def.Resolution; r != nil {
		for _, name := range []string{r.CodeField, r.SurnameField, r.GivenNameField} {
			if _, ok := def.Field(name); !ok {
				return fmt.Errorf("resolution field %q not declared", name)
			}
		}
	}
	return nil
}

// Get returns an entity definition by name.
// Returns false if not found.
func Get(name string) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// All returns all registered entity definitions sorted by name.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// EntityCount returns the number of registered entities.
func EntityCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered entities.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]EntityDefinition)
}
