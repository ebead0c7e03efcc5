// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
)

// Registry is a Resolver over a fixed set of gateways. Gateways are
// registered during startup and are read-only afterwards.
type Registry struct {
	mu         sync.RWMutex
	gatewayMap map[string]Gateway
}

var _ Resolver = &Registry{}

func NewRegistry(gateways ...Gateway) (*Registry, error) {
	r := &Registry{gatewayMap: make(map[string]Gateway)}
	for _, g := range gateways {
		if err := r.Add(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(g Gateway) error {
	name := g.ExchangeName()
	if len(name) == 0 {
		return fmt.Errorf("exchange name cannot be empty: %w", os.ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.gatewayMap[name]; ok {
		return fmt.Errorf("exchange %q is already registered: %w", name, os.ErrExist)
	}
	r.gatewayMap[name] = g
	return nil
}

func (r *Registry) Resolve(name string) (Gateway, error) {
	r.mu.RLock()
	g, ok := r.gatewayMap[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("could not resolve %q (configured: %s): %w", name, strings.Join(r.Names(), ","), ErrNotConfigured)
	}
	return g, nil
}

// Names returns the sorted names of the registered exchanges.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.gatewayMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
