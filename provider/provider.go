// Package provider implements the capability provider: a lookup service
// supplying shared singleton or per-request instances for handler
// parameters. It is populated at the composition root and read-only for the
// rest of the process, so concurrent resolution needs no locking.
package provider

import (
	"fmt"
	"reflect"
)

// Provider resolves instances by declared type.
type Provider struct {
	singletons map[reflect.Type]any
	factories  map[reflect.Type]func() any
}

// New returns an empty provider.
func New() *Provider {
	return &Provider{
		singletons: make(map[reflect.Type]any),
		factories:  make(map[reflect.Type]func() any),
	}
}

// RegisterSingleton registers a shared instance handed out on every resolve
// of T. Concurrent mutation of singleton state is the handler's concern, not
// the provider's.
func RegisterSingleton[T any](p *Provider, v T) {
	p.singletons[typeOf[T]()] = v
}

// RegisterFactory registers a constructor producing a fresh instance of T on
// each resolve.
func RegisterFactory[T any](p *Provider, fn func() T) {
	p.factories[typeOf[T]()] = func() any { return fn() }
}

// Has reports whether the provider can resolve t.
func (p *Provider) Has(t reflect.Type) bool {
	if _, ok := p.singletons[t]; ok {
		return true
	}
	_, ok := p.factories[t]
	return ok
}

// Resolve returns an instance of t, or false when t is not registered.
func (p *Provider) Resolve(t reflect.Type) (any, bool) {
	if v, ok := p.singletons[t]; ok {
		return v, true
	}
	if fn, ok := p.factories[t]; ok {
		return fn(), true
	}
	return nil, false
}

// ResolveRequired returns an instance of t or an error naming the missing
// type.
func (p *Provider) ResolveRequired(t reflect.Type) (any, error) {
	v, ok := p.Resolve(t)
	if !ok {
		return nil, fmt.Errorf("provider: no registration for %s", t)
	}
	return v, nil
}

// Resolve is the typed convenience form of Provider.Resolve.
func Resolve[T any](p *Provider) (T, bool) {
	v, ok := p.Resolve(typeOf[T]())
	if !ok {
		var z T
		return z, false
	}
	return v.(T), true
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
