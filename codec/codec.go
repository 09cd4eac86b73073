// Package codec translates host values to and from the fixed- or
// flexible-length byte payloads that FuziotDB stores in a slot.
//
// A fixed codec always produces/consumes exactly FixedLen() bytes. A flexible
// codec produces/consumes a length declared per-field in the schema; its
// BytesPerElement multiplies a caller-declared element count into that
// payload length (spec §4.1's "Open question" split between byte count and
// element count).
package codec

import "github.com/dropbox/godropbox/errors"

// Kind distinguishes fixed-length codecs from flexible-length ones.
type Kind int

const (
	Fixed Kind = iota
	Flexible
)

// MaxLen is the largest payload length (in bytes) a single field may have,
// per spec invariant 5.
const MaxLen = 65536

// Codec is implemented by every field type FuziotDB knows how to store.
//
// Exactly one of the Fixed or Flex methods is valid for a given codec,
// selected by Kind(). Calling the wrong Encode/Decode half returns a
// UsageMismatch error; calling the wrong one of FixedLen/BytesPerElement
// panics with one.
type Codec interface {
	Name() string
	Kind() Kind
	EndianSensitive() bool

	// FixedLen is the payload length in bytes. Valid only when Kind() ==
	// Fixed.
	FixedLen() int

	// BytesPerElement multiplies a schema-declared element count into a
	// payload length. Valid only when Kind() == Flexible.
	BytesPerElement() int

	// EncodeFixed returns the exact FixedLen() bytes encoding value. The
	// default multi-byte codecs emit little-endian bytes directly; callers
	// apply no further endian normalization.
	EncodeFixed(value interface{}) ([]byte, error)
	DecodeFixed(payload []byte) (interface{}, error)

	// EncodeFlex returns exactly length bytes encoding value, truncating
	// or zero-padding the natural encoding as needed.
	EncodeFlex(value interface{}, length int) ([]byte, error)
	DecodeFlex(payload []byte) (interface{}, error)
}

// usageMismatchError marks an error as a codec-usage problem rather than
// an I/O or schema failure, so a caller outside this package (typedesc,
// which can't import fuziotdb's Kind enum back into codec without a cycle)
// can recover the classification via IsUsageMismatch.
type usageMismatchError struct{ error }

// UsageMismatch reports a fixed codec invoked via the flexible path, or
// vice versa.
func UsageMismatch(c Codec, wantFixed bool) error {
	if wantFixed {
		return &usageMismatchError{errors.Newf("codec %s is flexible; fixed path is not valid", c.Name())}
	}
	return &usageMismatchError{errors.Newf("codec %s is fixed; flexible path is not valid", c.Name())}
}

// WrongType reports that value is not the host type codecName's codec
// expects — the value-side counterpart of UsageMismatch's path-side check.
func WrongType(codecName, want string, value interface{}) error {
	return &usageMismatchError{errors.Newf("%s codec: expected %s, got %T", codecName, want, value)}
}

// IsUsageMismatch reports whether err was constructed by UsageMismatch or
// WrongType.
func IsUsageMismatch(err error) bool {
	_, ok := err.(*usageMismatchError)
	return ok
}

// checkFixedLen validates a fixed codec's declared byte count at
// construction time, per spec §4.1 ("byte_count > 65536 fails at codec
// construction").
func checkFixedLen(name string, n int) {
	if n <= 0 || n > MaxLen {
		panic(errors.Newf("codec %s: invalid fixed byte count %d", name, n))
	}
}
