// Package resolve turns a command's declared parameter list and a raw JSON
// parameter payload into a fully typed argument list.
//
// Resolution is name-matched: payload fields bind to parameters by name, not
// position, so field order on the wire never matters. For each declared
// parameter, in order:
//
//  1. capability parameters resolve from the provider (required);
//  2. a payload field with the parameter's name decodes via its codec;
//  3. with no matching field, a provider registration for the type wins;
//  4. a remaining complex type decodes from the whole payload object,
//     supporting a single "body" parameter that is not a named field;
//  5. an absent or null field yields the type's zero value, never an error.
package resolve

import (
	"fmt"
	"reflect"

	"github.com/rthomasv3/Galdr/codec"
	"github.com/rthomasv3/Galdr/jsontext"
	"github.com/rthomasv3/Galdr/provider"
	"github.com/rthomasv3/Galdr/registry"
)

// ConversionError reports a payload value that could not be converted to a
// parameter's declared type. It names the parameter and the target type.
type ConversionError struct {
	Param string
	Type  reflect.Type
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("resolve: parameter %q: cannot convert to %s: %v", e.Param, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Resolver binds parameter specs to argument values using the codec
// registry and the capability provider.
type Resolver struct {
	codecs   *codec.Registry
	provider *provider.Provider
}

// New returns a resolver over the given codec registry and provider.
func New(codecs *codec.Registry, p *provider.Provider) *Resolver {
	return &Resolver{codecs: codecs, provider: p}
}

// Resolve produces the ordered argument list for specs from the raw JSON
// parameter payload. Capability and wire parameters may interleave in any
// order; params may be nil or empty for commands taking no wire input.
func (r *Resolver) Resolve(specs []registry.ParamSpec, params []byte) ([]any, error) {
	fields, err := jsontext.SplitObject(params)
	if err != nil {
		return nil, fmt.Errorf("resolve: bad parameter payload: %w", err)
	}

	args := make([]any, len(specs))
	for i, spec := range specs {
		if spec.FromProvider {
			v, err := r.provider.ResolveRequired(spec.Type)
			if err != nil {
				return nil, err
			}
			args[i] = v
			continue
		}

		raw, present := jsontext.Lookup(fields, spec.Name)
		if present {
			v, err := r.codecs.Decode(raw, spec.Type)
			if err != nil {
				return nil, &ConversionError{Param: spec.Name, Type: spec.Type, Err: err}
			}
			args[i] = v
			continue
		}

		if v, ok := r.provider.Resolve(spec.Type); ok {
			args[i] = v
			continue
		}

		// A struct parameter with no field of its own decodes from the
		// whole payload object. Absence must not throw, so a failed
		// attempt falls through to the zero value.
		if spec.Type.Kind() == reflect.Struct && len(fields) > 0 && r.codecs.CanHandle(spec.Type) {
			if v, err := r.codecs.Decode(params, spec.Type); err == nil {
				args[i] = v
				continue
			}
		}

		zero, ok := r.codecs.Zero(spec.Type)
		if !ok {
			return nil, &ConversionError{
				Param: spec.Name,
				Type:  spec.Type,
				Err:   codec.ErrUnsupportedType,
			}
		}
		args[i] = zero
	}
	return args, nil
}
