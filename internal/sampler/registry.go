package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/determinism"
)

// Deps is everything a Factory may need to build a sampler.
type Deps struct {
	Config *config.Model
	Source *determinism.Source
}

// Factory builds a sampler from the resolved configuration.
type Factory func(ctx context.Context, deps Deps) (Sampler, error)

// Module is the interface that every sampler implementation must satisfy to
// be registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps `sampler.kind` values to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering the same kind twice is a programming
// error and panics.
func (r *Registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		panic(fmt.Sprintf("sampler with kind '%s' already registered", kind))
	}
	slog.Debug("Registering sampler.", "kind", kind)
	r.factories[kind] = f
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// New builds the sampler registered under kind.
func (r *Registry) New(ctx context.Context, kind string, deps Deps) (Sampler, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sampler kind %q, registered: %v", kind, r.Kinds())
	}
	s, err := f(ctx, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s sampler: %w", kind, err)
	}
	return s, nil
}
