package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rthomasv3/Galdr/jsontext"
)

// Any is the accept-anything parameter type: raw JSON carried through the
// pipeline unchanged. Decoding is a copy, encoding re-emits the text.
type Any = json.RawMessage

// registerBuiltins installs the fixed encode/decode rules for primitives and
// well-known value types. rune is int32 and byte is uint8, so the single
// character and raw byte cases ride on the integer registrations.
func registerBuiltins(r *Registry) {
	Register(r,
		func(w *jsontext.Writer, v int) error { w.Int(int64(v)); return nil },
		func(raw []byte) (int, error) {
			n, err := jsontext.ParseInt(raw, 0)
			return int(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v int8) error { w.Int(int64(v)); return nil },
		func(raw []byte) (int8, error) {
			n, err := jsontext.ParseInt(raw, 8)
			return int8(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v int16) error { w.Int(int64(v)); return nil },
		func(raw []byte) (int16, error) {
			n, err := jsontext.ParseInt(raw, 16)
			return int16(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v int32) error { w.Int(int64(v)); return nil },
		func(raw []byte) (int32, error) {
			n, err := jsontext.ParseInt(raw, 32)
			return int32(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v int64) error { w.Int(v); return nil },
		func(raw []byte) (int64, error) {
			return jsontext.ParseInt(raw, 64)
		})
	Register(r,
		func(w *jsontext.Writer, v uint) error { w.Uint(uint64(v)); return nil },
		func(raw []byte) (uint, error) {
			n, err := jsontext.ParseUint(raw, 0)
			return uint(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v uint8) error { w.Uint(uint64(v)); return nil },
		func(raw []byte) (uint8, error) {
			n, err := jsontext.ParseUint(raw, 8)
			return uint8(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v uint16) error { w.Uint(uint64(v)); return nil },
		func(raw []byte) (uint16, error) {
			n, err := jsontext.ParseUint(raw, 16)
			return uint16(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v uint32) error { w.Uint(uint64(v)); return nil },
		func(raw []byte) (uint32, error) {
			n, err := jsontext.ParseUint(raw, 32)
			return uint32(n), err
		})
	Register(r,
		func(w *jsontext.Writer, v uint64) error { w.Uint(v); return nil },
		func(raw []byte) (uint64, error) {
			return jsontext.ParseUint(raw, 64)
		})
	Register(r,
		func(w *jsontext.Writer, v float32) error { w.Float(float64(v), 32); return nil },
		func(raw []byte) (float32, error) {
			f, err := jsontext.ParseFloat(raw, 32)
			return float32(f), err
		})
	Register(r,
		func(w *jsontext.Writer, v float64) error { w.Float(v, 64); return nil },
		func(raw []byte) (float64, error) {
			return jsontext.ParseFloat(raw, 64)
		})
	Register(r,
		func(w *jsontext.Writer, v bool) error { w.Bool(v); return nil },
		func(raw []byte) (bool, error) {
			return jsontext.ParseBool(raw)
		})
	Register(r,
		func(w *jsontext.Writer, v string) error { w.WriteString(v); return nil },
		func(raw []byte) (string, error) {
			return jsontext.Unquote(raw)
		})
	Register(r,
		func(w *jsontext.Writer, v uuid.UUID) error { w.WriteString(v.String()); return nil },
		func(raw []byte) (uuid.UUID, error) {
			s, err := jsontext.Unquote(raw)
			if err != nil {
				return uuid.Nil, err
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return uuid.Nil, fmt.Errorf("codec: invalid uuid %q: %w", s, err)
			}
			return id, nil
		})
	Register(r,
		func(w *jsontext.Writer, v time.Time) error {
			w.WriteString(v.Format(time.RFC3339Nano))
			return nil
		},
		func(raw []byte) (time.Time, error) {
			s, err := jsontext.Unquote(raw)
			if err != nil {
				return time.Time{}, err
			}
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return time.Time{}, fmt.Errorf("codec: invalid timestamp %q: %w", s, err)
			}
			return ts, nil
		})
	Register(r,
		func(w *jsontext.Writer, v Any) error {
			if len(jsontext.Trim(v)) == 0 {
				w.Null()
				return nil
			}
			w.Raw(jsontext.Trim(v))
			return nil
		},
		func(raw []byte) (Any, error) {
			return Any(append([]byte(nil), jsontext.Trim(raw)...)), nil
		})
}
