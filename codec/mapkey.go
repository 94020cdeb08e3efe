package codec

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// mapKeyFuncs returns the stringify/parse pair for a map key type. String
// keys pass through, integer keys use decimal text, UUID keys use the
// canonical form. Anything else stringifies with fmt on encode and is
// rejected on decode.
func mapKeyFuncs[K comparable]() (func(K) string, func(string) (K, error)) {
	var zero K
	switch any(zero).(type) {
	case string:
		return func(k K) string { return any(k).(string) },
			func(s string) (K, error) { return any(s).(K), nil }
	case int:
		return func(k K) string { return strconv.Itoa(any(k).(int)) },
			func(s string) (K, error) {
				n, err := strconv.Atoi(s)
				return any(n).(K), err
			}
	case int32:
		return func(k K) string { return strconv.FormatInt(int64(any(k).(int32)), 10) },
			func(s string) (K, error) {
				n, err := strconv.ParseInt(s, 10, 32)
				return any(int32(n)).(K), err
			}
	case int64:
		return func(k K) string { return strconv.FormatInt(any(k).(int64), 10) },
			func(s string) (K, error) {
				n, err := strconv.ParseInt(s, 10, 64)
				return any(n).(K), err
			}
	case uint:
		return func(k K) string { return strconv.FormatUint(uint64(any(k).(uint)), 10) },
			func(s string) (K, error) {
				n, err := strconv.ParseUint(s, 10, 0)
				return any(uint(n)).(K), err
			}
	case uint32:
		return func(k K) string { return strconv.FormatUint(uint64(any(k).(uint32)), 10) },
			func(s string) (K, error) {
				n, err := strconv.ParseUint(s, 10, 32)
				return any(uint32(n)).(K), err
			}
	case uint64:
		return func(k K) string { return strconv.FormatUint(any(k).(uint64), 10) },
			func(s string) (K, error) {
				n, err := strconv.ParseUint(s, 10, 64)
				return any(n).(K), err
			}
	case uuid.UUID:
		return func(k K) string { return any(k).(uuid.UUID).String() },
			func(s string) (K, error) {
				id, err := uuid.Parse(s)
				return any(id).(K), err
			}
	default:
		return func(k K) string { return fmt.Sprint(k) },
			func(s string) (K, error) {
				var z K
				return z, fmt.Errorf("codec: no key conversion for map key type %T", z)
			}
	}
}
