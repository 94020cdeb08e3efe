// Package codec implements the per-type JSON encode/decode registry.
//
// Every type that can cross the wire has exactly one Codec, registered ahead
// of time during application composition. Type identity (reflect.Type) is
// used only as a comparable map key; no codec ever walks a value through
// reflection. Struct codecs are assembled from explicit field specs with
// typed accessor closures, the ahead-of-time equivalent of generated
// serializer code.
package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rthomasv3/Galdr/jsontext"
)

// ErrUnsupportedType is returned when no codec is registered for a type.
var ErrUnsupportedType = errors.New("codec: unsupported type")

// Codec encodes and decodes values of a single type.
type Codec interface {
	Encode(w *jsontext.Writer, v any) error
	Decode(raw []byte) (any, error)
	Zero() any // the type's zero value, used for absent/null fields
}

// TypeOf returns the type key for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Registry maps type identity to its codec. It is populated once at startup
// and read-only afterwards, so concurrent reads need no synchronization.
type Registry struct {
	codecs map[reflect.Type]Codec
}

// NewRegistry returns a registry pre-loaded with codecs for primitives,
// strings, UUIDs, timestamps, and raw JSON passthrough.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[reflect.Type]Codec)}
	registerBuiltins(r)
	return r
}

// Register installs a codec for T built from an encode and a decode function.
// Registering a type twice replaces the earlier codec.
func Register[T any](r *Registry, enc func(w *jsontext.Writer, v T) error, dec func(raw []byte) (T, error)) {
	r.codecs[TypeOf[T]()] = &funcCodec[T]{enc: enc, dec: dec}
}

// CanHandle reports whether a codec is registered for t.
func (r *Registry) CanHandle(t reflect.Type) bool {
	_, ok := r.codecs[t]
	return ok
}

// Lookup returns the codec registered for t.
func (r *Registry) Lookup(t reflect.Type) (Codec, bool) {
	c, ok := r.codecs[t]
	return c, ok
}

// Zero returns the zero value for t, if a codec is registered.
func (r *Registry) Zero(t reflect.Type) (any, bool) {
	c, ok := r.codecs[t]
	if !ok {
		return nil, false
	}
	return c.Zero(), true
}

// Encode serializes v, which must be of type t, to JSON text.
func (r *Registry) Encode(v any, t reflect.Type) ([]byte, error) {
	w := jsontext.NewWriter()
	if err := r.EncodeTo(w, v, t); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo streams the encoding of v into an in-progress writer. Nested
// codecs use this to emit field and element values in place.
func (r *Registry) EncodeTo(w *jsontext.Writer, v any, t reflect.Type) error {
	c, ok := r.codecs[t]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return c.Encode(w, v)
}

// Decode parses raw JSON text into a value of type t. The null literal and
// empty input decode to the type's zero value.
func (r *Registry) Decode(raw []byte, t reflect.Type) (any, error) {
	c, ok := r.codecs[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if len(jsontext.Trim(raw)) == 0 || jsontext.IsNull(raw) {
		return c.Zero(), nil
	}
	return c.Decode(raw)
}

// funcCodec adapts a typed encode/decode pair to the Codec interface.
type funcCodec[T any] struct {
	enc func(w *jsontext.Writer, v T) error
	dec func(raw []byte) (T, error)
}

func (c *funcCodec[T]) Encode(w *jsontext.Writer, v any) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("codec: value is %T, codec expects %s", v, TypeOf[T]())
	}
	return c.enc(w, tv)
}

func (c *funcCodec[T]) Decode(raw []byte) (any, error) {
	v, err := c.dec(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *funcCodec[T]) Zero() any {
	var z T
	return z
}
