package codec

import (
	"fmt"
	"sort"

	"github.com/rthomasv3/Galdr/jsontext"
)

// Field is one wire field of an object codec for T. Build them with Prop,
// Getter, or Setter and pass the ordered list to RegisterObject.
type Field[T any] struct {
	name   string
	encode func(r *Registry, w *jsontext.Writer, v *T) error
	decode func(r *Registry, raw []byte, v *T) error
}

// Prop declares a readable and writable field: encoded on output, assigned
// on input.
func Prop[T, F any](name string, get func(*T) F, set func(*T, F)) Field[T] {
	f := Getter[T, F](name, get)
	f.decode = Setter[T, F](name, set).decode
	return f
}

// Getter declares a read-only field: it appears in encoded output but is
// never assigned from input.
func Getter[T, F any](name string, get func(*T) F) Field[T] {
	ft := TypeOf[F]()
	return Field[T]{
		name: name,
		encode: func(r *Registry, w *jsontext.Writer, v *T) error {
			w.Name(name)
			return r.EncodeTo(w, get(v), ft)
		},
	}
}

// Setter declares a write-only field: assigned from input, absent from
// encoded output.
func Setter[T, F any](name string, set func(*T, F)) Field[T] {
	ft := TypeOf[F]()
	return Field[T]{
		name: name,
		decode: func(r *Registry, raw []byte, v *T) error {
			fv, err := r.Decode(raw, ft)
			if err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
			set(v, fv.(F))
			return nil
		},
	}
}

// RegisterObject installs an object codec for T from its ordered field
// specs. Encoding emits fields in declaration order; decoding assigns fields
// by wire name, skips unknown payload fields, and leaves absent or null
// fields at their zero value.
func RegisterObject[T any](r *Registry, fields ...Field[T]) {
	Register(r,
		func(w *jsontext.Writer, v T) error {
			w.BeginObject()
			for _, f := range fields {
				if f.encode == nil {
					continue
				}
				if err := f.encode(r, w, &v); err != nil {
					return err
				}
			}
			w.EndObject()
			return nil
		},
		func(raw []byte) (T, error) {
			var v T
			parsed, err := jsontext.SplitObject(raw)
			if err != nil {
				return v, err
			}
			for _, f := range fields {
				if f.decode == nil {
					continue
				}
				fraw, ok := jsontext.Lookup(parsed, f.name)
				if !ok || jsontext.IsNull(fraw) {
					continue
				}
				if err := f.decode(r, fraw, &v); err != nil {
					return v, err
				}
			}
			return v, nil
		})
}

// RegisterSlice installs a codec for []E as a JSON array, recursing into the
// element codec. E must itself be registered before any call runs.
func RegisterSlice[E any](r *Registry) {
	et := TypeOf[E]()
	Register(r,
		func(w *jsontext.Writer, v []E) error {
			w.BeginArray()
			for _, e := range v {
				if err := r.EncodeTo(w, e, et); err != nil {
					return err
				}
			}
			w.EndArray()
			return nil
		},
		func(raw []byte) ([]E, error) {
			elems, err := jsontext.SplitArray(raw)
			if err != nil {
				return nil, err
			}
			out := make([]E, len(elems))
			for i, eraw := range elems {
				ev, err := r.Decode(eraw, et)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out[i] = ev.(E)
			}
			return out, nil
		})
}

// RegisterMap installs a codec for map[K]V as a JSON object. Keys are always
// serialized as property names: non-string keys are stringified on encode
// and parsed back via the key type's conversion on decode. Encoded keys are
// sorted so output is deterministic.
func RegisterMap[K comparable, V any](r *Registry) {
	vt := TypeOf[V]()
	keyEnc, keyDec := mapKeyFuncs[K]()
	Register(r,
		func(w *jsontext.Writer, v map[K]V) error {
			names := make([]string, 0, len(v))
			byName := make(map[string]K, len(v))
			for k := range v {
				s := keyEnc(k)
				names = append(names, s)
				byName[s] = k
			}
			sort.Strings(names)
			w.BeginObject()
			for _, s := range names {
				w.Name(s)
				if err := r.EncodeTo(w, v[byName[s]], vt); err != nil {
					return err
				}
			}
			w.EndObject()
			return nil
		},
		func(raw []byte) (map[K]V, error) {
			parsed, err := jsontext.SplitObject(raw)
			if err != nil {
				return nil, err
			}
			out := make(map[K]V, len(parsed))
			for _, f := range parsed {
				k, err := keyDec(f.Name)
				if err != nil {
					return nil, fmt.Errorf("map key %q: %w", f.Name, err)
				}
				vv, err := r.Decode(f.Raw, vt)
				if err != nil {
					return nil, fmt.Errorf("map key %q: %w", f.Name, err)
				}
				out[k] = vv.(V)
			}
			return out, nil
		})
}
