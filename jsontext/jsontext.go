// Package jsontext implements a forward-only JSON boundary scanner and writer.
//
// It is deliberately not a document parser. The scanner identifies the raw
// byte range of each value so that typed codecs can decode lazily: an incoming
// parameter object is split into "key": value pairs without knowing value
// types in advance, and only the fields a codec actually declares are ever
// materialized.
//
//	{"name":"World","count":3,"extra":{"x":1}}
//	 └─ Field{name, `"World"`} ─ Field{count, `3`} ─ Field{extra, `{"x":1}`}
//
// Nesting and quoted-string escaping are respected when scanning a value's
// extent, so nested objects and arrays pass through as opaque slices.
package jsontext

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Field is one top-level "key": value pair of a scanned JSON object.
// Raw is the exact sub-slice of the input holding the (undecoded) value.
type Field struct {
	Name string
	Raw  []byte
}

// Lookup returns the raw value of the named field, scanning in order.
func Lookup(fields []Field, name string) ([]byte, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Raw, true
		}
	}
	return nil, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && isSpace(data[i]) {
		i++
	}
	return i
}

// Trim strips JSON whitespace from both ends of data.
func Trim(data []byte) []byte {
	i := skipSpace(data, 0)
	j := len(data)
	for j > i && isSpace(data[j-1]) {
		j--
	}
	return data[i:j]
}

// IsNull reports whether raw is the JSON null literal.
func IsNull(raw []byte) bool {
	return bytes.Equal(Trim(raw), []byte("null"))
}

// stringEnd returns the index one past the closing quote of the string
// starting at data[i] (which must be '"').
func stringEnd(data []byte, i int) (int, error) {
	for j := i + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++ // skip the escaped byte; \uXXXX hex digits cannot be '"' or '\'
		case '"':
			return j + 1, nil
		}
	}
	return 0, fmt.Errorf("jsontext: unterminated string at offset %d", i)
}

// valueEnd returns the index one past the JSON value starting at data[i].
// Objects and arrays are depth-counted; strings inside them are skipped so
// that braces in string content do not confuse nesting.
func valueEnd(data []byte, i int) (int, error) {
	if i >= len(data) {
		return 0, fmt.Errorf("jsontext: unexpected end of input")
	}
	switch data[i] {
	case '"':
		return stringEnd(data, i)
	case '{', '[':
		depth := 0
		for j := i; j < len(data); j++ {
			switch data[j] {
			case '"':
				end, err := stringEnd(data, j)
				if err != nil {
					return 0, err
				}
				j = end - 1
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					return j + 1, nil
				}
			}
		}
		return 0, fmt.Errorf("jsontext: unterminated value at offset %d", i)
	default:
		// Literal: number, true, false, null. Runs to the next delimiter.
		j := i
		for j < len(data) && !isSpace(data[j]) && data[j] != ',' && data[j] != '}' && data[j] != ']' {
			j++
		}
		if j == i {
			return 0, fmt.Errorf("jsontext: empty value at offset %d", i)
		}
		return j, nil
	}
}

// SplitObject scans a JSON object and returns its top-level fields in input
// order, each with its raw undecoded value. Empty or absent input and the
// empty object {} both yield zero fields.
func SplitObject(data []byte) ([]Field, error) {
	d := Trim(data)
	if len(d) == 0 {
		return nil, nil
	}
	if d[0] != '{' {
		return nil, fmt.Errorf("jsontext: expected object, got %q", d[0])
	}
	i := skipSpace(d, 1)
	if i < len(d) && d[i] == '}' {
		if rest := Trim(d[i+1:]); len(rest) != 0 {
			return nil, fmt.Errorf("jsontext: trailing data after object")
		}
		return nil, nil
	}
	var fields []Field
	for {
		i = skipSpace(d, i)
		if i >= len(d) || d[i] != '"' {
			return nil, fmt.Errorf("jsontext: expected field name at offset %d", i)
		}
		end, err := stringEnd(d, i)
		if err != nil {
			return nil, err
		}
		name, err := Unquote(d[i:end])
		if err != nil {
			return nil, err
		}
		i = skipSpace(d, end)
		if i >= len(d) || d[i] != ':' {
			return nil, fmt.Errorf("jsontext: expected ':' after field %q", name)
		}
		i = skipSpace(d, i+1)
		vend, err := valueEnd(d, i)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Raw: d[i:vend]})
		i = skipSpace(d, vend)
		if i >= len(d) {
			return nil, fmt.Errorf("jsontext: unterminated object")
		}
		switch d[i] {
		case ',':
			i++
		case '}':
			if rest := Trim(d[i+1:]); len(rest) != 0 {
				return nil, fmt.Errorf("jsontext: trailing data after object")
			}
			return fields, nil
		default:
			return nil, fmt.Errorf("jsontext: expected ',' or '}' at offset %d", i)
		}
	}
}

// SplitArray scans a JSON array and returns the raw slice of each element in
// order. The empty array [] and the null literal both yield zero elements.
func SplitArray(data []byte) ([][]byte, error) {
	d := Trim(data)
	if len(d) == 0 || bytes.Equal(d, []byte("null")) {
		return nil, nil
	}
	if d[0] != '[' {
		return nil, fmt.Errorf("jsontext: expected array, got %q", d[0])
	}
	i := skipSpace(d, 1)
	if i < len(d) && d[i] == ']' {
		if rest := Trim(d[i+1:]); len(rest) != 0 {
			return nil, fmt.Errorf("jsontext: trailing data after array")
		}
		return nil, nil
	}
	var elems [][]byte
	for {
		i = skipSpace(d, i)
		vend, err := valueEnd(d, i)
		if err != nil {
			return nil, err
		}
		elems = append(elems, d[i:vend])
		i = skipSpace(d, vend)
		if i >= len(d) {
			return nil, fmt.Errorf("jsontext: unterminated array")
		}
		switch d[i] {
		case ',':
			i++
		case ']':
			if rest := Trim(d[i+1:]); len(rest) != 0 {
				return nil, fmt.Errorf("jsontext: trailing data after array")
			}
			return elems, nil
		default:
			return nil, fmt.Errorf("jsontext: expected ',' or ']' at offset %d", i)
		}
	}
}

// Unquote decodes a JSON string token (including the surrounding quotes)
// into its Go string value. All escape forms are handled, including \uXXXX
// surrogate pairs.
func Unquote(raw []byte) (string, error) {
	s := Trim(raw)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("jsontext: not a string: %s", raw)
	}
	s = s[1 : len(s)-1]
	if !bytes.ContainsAny(s, `\`) {
		return string(s), nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("jsontext: truncated escape")
		}
		i++
		switch s[i] {
		case '"', '\\', '/':
			b.WriteByte(s[i])
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'u':
			r, n, err := decodeHexRune(s[i-1:])
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += n - 1
		default:
			return "", fmt.Errorf("jsontext: invalid escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

// decodeHexRune decodes one \uXXXX sequence (s starts at the backslash),
// combining surrogate pairs. It returns the rune and the bytes consumed.
func decodeHexRune(s []byte) (rune, int, error) {
	r1, err := hex4(s)
	if err != nil {
		return 0, 0, err
	}
	if utf16.IsSurrogate(r1) {
		if len(s) >= 12 && s[6] == '\\' && s[7] == 'u' {
			r2, err := hex4(s[6:])
			if err != nil {
				return 0, 0, err
			}
			if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
				return r, 12, nil
			}
		}
		return utf8.RuneError, 6, nil
	}
	return r1, 6, nil
}

func hex4(s []byte) (rune, error) {
	if len(s) < 6 || s[0] != '\\' || s[1] != 'u' {
		return 0, fmt.Errorf("jsontext: truncated \\u escape")
	}
	v, err := strconv.ParseUint(string(s[2:6]), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("jsontext: invalid \\u escape: %w", err)
	}
	return rune(v), nil
}

// ParseInt decodes a JSON integer literal into a signed value of the given
// bit width.
func ParseInt(raw []byte, bitSize int) (int64, error) {
	return strconv.ParseInt(string(Trim(raw)), 10, bitSize)
}

// ParseUint decodes a JSON integer literal into an unsigned value.
func ParseUint(raw []byte, bitSize int) (uint64, error) {
	return strconv.ParseUint(string(Trim(raw)), 10, bitSize)
}

// ParseFloat decodes a JSON number literal.
func ParseFloat(raw []byte, bitSize int) (float64, error) {
	return strconv.ParseFloat(string(Trim(raw)), bitSize)
}

// ParseBool decodes the JSON true/false literals.
func ParseBool(raw []byte) (bool, error) {
	switch string(Trim(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("jsontext: not a boolean: %s", raw)
}

// AppendQuote appends the JSON string encoding of s, quotes included.
// Control characters are escaped as \u00XX; everything else (including
// multi-byte UTF-8) passes through verbatim.
func AppendQuote(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf = append(buf, '\\', '"')
		case c == '\\':
			buf = append(buf, '\\', '\\')
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '\r':
			buf = append(buf, '\\', 'r')
		case c == '\t':
			buf = append(buf, '\\', 't')
		case c < 0x20:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		default:
			buf = append(buf, c)
		}
	}
	return append(buf, '"')
}

const hexDigits = "0123456789abcdef"
