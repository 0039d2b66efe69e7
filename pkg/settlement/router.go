package settlement

import (
	"fmt"

	"tour-payouts/internal/data/entity"
)

// Router selects the adapter for a payment method kind.
type Router struct {
	adapters map[entity.MethodKind]Adapter
}

func NewRouter() *Router {
	return &Router{adapters: make(map[entity.MethodKind]Adapter)}
}

// Register binds an adapter to a method kind, replacing any previous one.
func (r *Router) Register(kind entity.MethodKind, adapter Adapter) {
	r.adapters[kind] = adapter
}

// For returns the adapter registered for the kind.
func (r *Router) For(kind entity.MethodKind) (Adapter, error) {
	adapter, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no settlement adapter registered for kind %q", kind)
	}
	return adapter, nil
}
