// =============================
// File: internal/dex/registry.go
// =============================
package dex

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

// ErrUnsupportedDex is returned by Build for a type nobody registered.
var ErrUnsupportedDex = errors.New("dex type is not supported")

type registration struct {
	name  string
	build Builder
}

// Registry maps dex types to adapter builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[Type]registration
	logger   *zap.Logger
}

// NewRegistry создаёт пустой реестр адаптеров.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		builders: make(map[Type]registration),
		logger:   logger.Named("dex_registry"),
	}
}

// NewDefaultRegistry returns a registry with every built-in adapter.
func NewDefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	if err := r.Register(TypeTokenSwap, "token-swap", NewTokenSwapAdapter); err != nil {
		panic(err)
	}
	return r
}

// Register adds a builder for t.
func (r *Registry) Register(t Type, name string, b Builder) error {
	if b == nil {
		return fmt.Errorf("dex %s: builder cannot be nil", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.builders[t]; ok {
		return fmt.Errorf("dex type %d already registered as %s", uint8(t), existing.name)
	}
	r.builders[t] = registration{name: name, build: b}

	r.logger.Debug("Dex registered",
		zap.Uint8("type", uint8(t)),
		zap.String("name", name))
	return nil
}

// Build constructs the adapter for t.
func (r *Registry) Build(t Type, env Env, accounts []*runtime.AccountInfo) (Adapter, error) {
	r.mu.RLock()
	reg, ok := r.builders[t]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDex, uint8(t))
	}
	return reg.build(env, accounts)
}

// Name returns the registered name of t.
func (r *Registry) Name(t Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.builders[t]
	return reg.name, ok
}

// Types lists registered types in ascending order.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]Type, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
