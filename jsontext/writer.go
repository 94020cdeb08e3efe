package jsontext

import "strconv"

// Writer builds JSON text into a single buffer. Commas between members are
// inserted automatically; a Name call binds the next value to that field.
//
// The zero value is ready to use.
type Writer struct {
	buf     []byte
	started []bool // per open container: first member already written
	pending bool   // a field name was written; the next value completes it
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated JSON text.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// String returns the accumulated JSON text as a string.
func (w *Writer) String() string {
	return string(w.buf)
}

// Reset discards everything written so far.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.started = w.started[:0]
	w.pending = false
}

// member inserts a leading comma when a previous member exists at the
// current nesting level. A pending field name suppresses the comma because
// it was already emitted before the name.
func (w *Writer) member() {
	if w.pending {
		w.pending = false
		return
	}
	if n := len(w.started); n > 0 {
		if w.started[n-1] {
			w.buf = append(w.buf, ',')
		} else {
			w.started[n-1] = true
		}
	}
}

// BeginObject opens a JSON object.
func (w *Writer) BeginObject() {
	w.member()
	w.buf = append(w.buf, '{')
	w.started = append(w.started, false)
}

// EndObject closes the current object.
func (w *Writer) EndObject() {
	w.buf = append(w.buf, '}')
	w.started = w.started[:len(w.started)-1]
}

// BeginArray opens a JSON array.
func (w *Writer) BeginArray() {
	w.member()
	w.buf = append(w.buf, '[')
	w.started = append(w.started, false)
}

// EndArray closes the current array.
func (w *Writer) EndArray() {
	w.buf = append(w.buf, ']')
	w.started = w.started[:len(w.started)-1]
}

// Name writes an object field name. The next value written belongs to it.
func (w *Writer) Name(name string) {
	w.member()
	w.buf = AppendQuote(w.buf, name)
	w.buf = append(w.buf, ':')
	w.pending = true
}

// WriteString writes a JSON string value.
func (w *Writer) WriteString(s string) {
	w.member()
	w.buf = AppendQuote(w.buf, s)
}

// Bool writes a JSON boolean value.
func (w *Writer) Bool(b bool) {
	w.member()
	if b {
		w.buf = append(w.buf, "true"...)
	} else {
		w.buf = append(w.buf, "false"...)
	}
}

// Int writes a signed integer value.
func (w *Writer) Int(v int64) {
	w.member()
	w.buf = strconv.AppendInt(w.buf, v, 10)
}

// Uint writes an unsigned integer value.
func (w *Writer) Uint(v uint64) {
	w.member()
	w.buf = strconv.AppendUint(w.buf, v, 10)
}

// Float writes a floating point value with the shortest representation that
// round-trips at the given bit width.
func (w *Writer) Float(v float64, bitSize int) {
	w.member()
	w.buf = strconv.AppendFloat(w.buf, v, 'g', -1, bitSize)
}

// Null writes the JSON null literal.
func (w *Writer) Null() {
	w.member()
	w.buf = append(w.buf, "null"...)
}

// Raw writes pre-encoded JSON text verbatim.
func (w *Writer) Raw(data []byte) {
	w.member()
	w.buf = append(w.buf, data...)
}
