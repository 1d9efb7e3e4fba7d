// Package scenario holds ready-made bow-tie models and loads new ones from YAML.
package scenario

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
)

// ErrUnknownScenario is returned by Registry.Get for unregistered names.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario is a built model plus the diagram edits it needs.
type Scenario struct {
	Name        string
	Description string
	Model       *bowtie.BowTie
	// RemoveEdges are (from, to) pairs dropped from the rendered diagram.
	RemoveEdges [][2]string
}

// Factory builds a fresh scenario.
type Factory func() (*Scenario, error)

// Registry maps scenario names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("scenario %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Get builds the named scenario.
func (r *Registry) Get(name string) (*Scenario, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return f()
}

// Names lists registered scenarios alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns a registry holding the airprox and logictest models.
func Builtins() *Registry {
	r := NewRegistry()
	_ = r.Register(AirproxName, Airprox)
	_ = r.Register(LogicTestName, LogicTest)
	return r
}
