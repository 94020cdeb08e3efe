// Package registry implements the command registry: the mapping from wire
// command name to handler descriptor, built once during application
// composition and immutable for the process lifetime.
package registry

import (
	"context"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/rthomasv3/Galdr/codec"
)

// Handler is the invocable form of a registered command. Arguments arrive
// fully typed and ordered per the descriptor's parameter specs.
type Handler func(ctx context.Context, args []any) (any, error)

// ParamSpec declares one handler parameter. FromProvider marks parameters
// resolved from the capability provider rather than the wire payload; the
// split is decided statically here, at registration time, never from the
// runtime payload shape.
type ParamSpec struct {
	Name         string
	Type         reflect.Type
	FromProvider bool
}

// Arg declares a wire parameter of type T with the given payload field name.
func Arg[T any](name string) ParamSpec {
	return ParamSpec{Name: name, Type: codec.TypeOf[T]()}
}

// Capability declares a parameter resolved from the capability provider.
func Capability[T any]() ParamSpec {
	return ParamSpec{Type: codec.TypeOf[T](), FromProvider: true}
}

// Result returns the result type key for a command returning T.
func Result[T any]() reflect.Type {
	return codec.TypeOf[T]()
}

// Descriptor describes one command. Name is the declared handler name
// ("Greet"); the wire name is derived from it by lower-casing the first rune
// unless WireName overrides it. Result nil means the command returns
// nothing.
type Descriptor struct {
	Name     string
	WireName string
	Handler  Handler
	Params   []ParamSpec
	Result   reflect.Type
}

// wireName resolves the final registered name.
func (d *Descriptor) wireName() string {
	if d.WireName != "" {
		return d.WireName
	}
	return lowerFirst(d.Name)
}

// Registry is the name → descriptor table. Reads after composition are
// lock-free; the table is never mutated once the dispatcher starts.
type Registry struct {
	commands map[string]*Descriptor
	order    []string
}

// New returns an empty command registry.
func New() *Registry {
	return &Registry{commands: make(map[string]*Descriptor)}
}

// Register adds a command under its derived or explicit wire name and
// returns that name. The first registration of a name wins; later
// duplicates are silently ignored.
func (r *Registry) Register(d Descriptor) string {
	name := d.wireName()
	if _, exists := r.commands[name]; exists {
		return name
	}
	stored := d
	stored.Name = name
	stored.WireName = name
	r.commands[name] = &stored
	r.order = append(r.order, name)
	return name
}

// RegisterGroup adds a set of commands with every wire name prefixed by the
// lower-cased group name, producing names like "testCommands.prefixTest".
func (r *Registry) RegisterGroup(group string, ds ...Descriptor) {
	prefix := lowerFirst(group) + "."
	for _, d := range ds {
		d.WireName = prefix + d.wireName()
		r.Register(d)
	}
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.commands[name]
	return d, ok
}

// Names returns the registered wire names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Validate checks every declared wire parameter and result type against the
// codec registry so that a missing codec fails at startup rather than at
// call time.
func (r *Registry) Validate(codecs *codec.Registry) error {
	for _, name := range r.order {
		d := r.commands[name]
		for i, p := range d.Params {
			if p.FromProvider {
				continue
			}
			if !codecs.CanHandle(p.Type) {
				return fmt.Errorf("command %q parameter %d (%q): %w: %s",
					name, i, p.Name, codec.ErrUnsupportedType, p.Type)
			}
		}
		if d.Result != nil && !codecs.CanHandle(d.Result) {
			return fmt.Errorf("command %q result: %w: %s",
				name, codec.ErrUnsupportedType, d.Result)
		}
	}
	return nil
}

// lowerFirst lower-cases the first rune, the conventional camelCase wire
// naming.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
