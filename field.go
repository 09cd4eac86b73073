package fuziotdb

import (
	"github.com/fuziot/fuziotdb/codec"
)

// MaxFieldLength and MaxFields mirror spec invariants 5 and 6: lengths and
// field counts are stored on disk as an N-1 value across 1 or 2 bytes, so
// both top out at 65536.
const (
	MaxFieldLength = 65536
	MaxFields      = 65536
	MaxNameLength  = 256
)

// Field is one column in a schema: an ASCII name, the payload byte length
// that will actually be stored on disk, and the codec used to translate
// to/from that payload.
//
// Equality of two Fields (Equal) ignores the codec reference and compares
// only (Name, Length), per spec §4.2 — this is what lets a codec be
// swapped out without forcing a header rewrite, as long as the wire
// length doesn't change.
type Field struct {
	Name   string
	Length int
	Codec  codec.Codec
}

// Equal implements the (name, length) equality spec §3 invariant 4 and
// §4.2 describe.
func (f Field) Equal(other Field) bool {
	return f.Name == other.Name && f.Length == other.Length
}

// NewField builds a Field from a declared element count for flexible
// codecs or is ignored for fixed codecs, per the registration contract in
// spec §4.3. length is always returned in bytes.
func NewField(name string, c codec.Codec, declaredLength int) (Field, error) {
	if name == "" {
		return Field{}, NewError(InvalidSchema, "field name must not be empty")
	}
	if len(name) > MaxNameLength {
		return Field{}, NewError(InvalidSchema, "field name %q exceeds %d bytes", name, MaxNameLength)
	}
	if !isASCII(name) {
		return Field{}, NewError(InvalidSchema, "field name %q is not ASCII", name)
	}

	var byteLen int
	switch c.Kind() {
	case codec.Fixed:
		byteLen = c.FixedLen()
	case codec.Flexible:
		if declaredLength <= 0 {
			return Field{}, NewError(InvalidSchema, "field %q: flexible codec requires a positive element count", name)
		}
		byteLen = declaredLength * c.BytesPerElement()
	default:
		return Field{}, NewError(InvalidSchema, "field %q: unknown codec kind", name)
	}

	if byteLen <= 0 || byteLen > MaxFieldLength {
		return Field{}, NewError(InvalidSchema, "field %q: payload length %d out of range [1, %d]", name, byteLen, MaxFieldLength)
	}
	return Field{Name: name, Length: byteLen, Codec: c}, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// Schema is the ordered list of fields a record type declares at
// registration. The host's declaration order is only a starting point: on
// an existing file, the on-disk order (read from the header) is
// authoritative, per spec §4.3 step 4.
type Schema struct {
	Fields []Field
}

// Validate enforces spec §4.3 registration step 1.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return NewError(InvalidSchema, "schema must declare at least one field")
	}
	if len(s.Fields) > MaxFields {
		return NewError(InvalidSchema, "schema declares %d fields, exceeding %d", len(s.Fields), MaxFields)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return NewError(InvalidSchema, "field name must not be empty")
		}
		if !isASCII(f.Name) {
			return NewError(InvalidSchema, "field name %q is not ASCII", f.Name)
		}
		if f.Length <= 0 || f.Length > MaxFieldLength {
			return NewError(InvalidSchema, "field %q: length %d out of range", f.Name, f.Length)
		}
		if _, dup := seen[f.Name]; dup {
			return NewError(InvalidSchema, "duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// SlotSize is 1 (options byte) plus the sum of every field's payload
// length, per spec invariant 1.
func (s Schema) SlotSize() int {
	size := 1
	for _, f := range s.Fields {
		size += f.Length
	}
	return size
}

// IndexOf returns the position of the named field, or -1.
func (s Schema) IndexOf(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// SameFieldSet reports whether two schemas have equal (name, length) sets,
// ignoring order and codec identity — the comparison spec §4.3 step 3
// uses to detect HeaderMismatch.
func SameFieldSet(a, b Schema) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	index := make(map[string]int, len(a.Fields))
	for _, f := range a.Fields {
		index[f.Name] = f.Length
	}
	for _, f := range b.Fields {
		l, ok := index[f.Name]
		if !ok || l != f.Length {
			return false
		}
	}
	return true
}
