package recon

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cobmax/batimento/internal/domain/dataset"
)

// SplitterRegistry manages splitter registrations by name. Client pipelines
// register each direction's splitter here before any file is touched, so a
// misconfigured or duplicated direction fails before mid-run.
type SplitterRegistry struct {
	mu        sync.RWMutex
	splitters map[string]Splitter
}

// NewSplitterRegistry creates an empty registry.
func NewSplitterRegistry() *SplitterRegistry {
	return &SplitterRegistry{splitters: make(map[string]Splitter)}
}

// Register adds a splitter under the given name.
func (r *SplitterRegistry) Register(name string, s Splitter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.splitters[name]; exists {
		return fmt.Errorf("%w: splitter '%s' already registered", dataset.ErrAlreadyExists, name)
	}
	r.splitters[name] = s
	return nil
}

// Get returns a splitter by name.
func (r *SplitterRegistry) Get(name string) (Splitter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.splitters[name]
	if !exists {
		return nil, fmt.Errorf("%w: splitter '%s' not found", dataset.ErrNotFound, name)
	}
	return s, nil
}

// List returns all registered splitter names, sorted.
func (r *SplitterRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.splitters))
	for name := range r.splitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
