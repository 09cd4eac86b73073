// Package header implements the byte-exact file-header encoding described
// in spec §4.2 and §6: a field count followed by one field header per
// field, each holding an ASCII name and a payload length. The field count,
// each name length and each payload length are stored as an N-1 value
// (spec invariants 5 and 6): the two-byte field count and payload length
// hold 1..65536, the one-byte name length holds 1..256.
//
// This is grounded on the teacher's heapPage.getTableHeader/setTableHeader
// (bytes.Buffer + encoding/binary), generalized from the teacher's
// in-memory TableHeader to FuziotDB's on-disk (name, length) pairs.
package header

import (
	"bytes"
	"io"

	"github.com/dropbox/godropbox/errors"
	"github.com/fuziot/fuziotdb/endian"
)

// FieldHeader is the on-disk representation of one field: its name and
// its payload byte length. It carries no codec reference — codec
// resolution happens one layer up, in package typedesc.
type FieldHeader struct {
	Name   string
	Length int
}

const (
	maxNameLen  = 256
	maxFieldLen = 65536
	maxFields   = 65536
)

// Encode writes the file header for the given ordered field list.
func Encode(fields []FieldHeader) ([]byte, error) {
	if len(fields) == 0 || len(fields) > maxFields {
		return nil, errors.Newf("header: field count %d out of range [1, %d]", len(fields), maxFields)
	}
	var buf bytes.Buffer
	var countBuf [2]byte
	endian.PutUint16(countBuf[:], uint16(len(fields)-1))
	buf.Write(countBuf[:])

	for _, f := range fields {
		if err := encodeField(&buf, f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeField(buf *bytes.Buffer, f FieldHeader) error {
	if f.Name == "" || len(f.Name) > maxNameLen {
		return errors.Newf("header: field name %q has invalid length", f.Name)
	}
	if f.Length <= 0 || f.Length > maxFieldLen {
		return errors.Newf("header: field %q length %d out of range [1, %d]", f.Name, f.Length, maxFieldLen)
	}
	buf.WriteByte(byte(len(f.Name) - 1))
	buf.WriteString(f.Name)
	var lenBuf [2]byte
	endian.PutUint16(lenBuf[:], uint16(f.Length-1))
	buf.Write(lenBuf[:])
	return nil
}

// Decode parses a file header from the front of b, returning the field
// list and the number of bytes consumed (the header size).
func Decode(b []byte) ([]FieldHeader, int, error) {
	if len(b) < 2 {
		return nil, 0, errors.New("header: buffer too short for field count")
	}
	count := int(endian.Uint16(b[0:2])) + 1
	off := 2

	fields := make([]FieldHeader, 0, count)
	for i := 0; i < count; i++ {
		if off >= len(b) {
			return nil, 0, errors.Newf("header: truncated at field %d", i)
		}
		nameLen := int(b[off]) + 1
		off++
		if off+nameLen+2 > len(b) {
			return nil, 0, errors.Newf("header: truncated field %d body", i)
		}
		name := string(b[off : off+nameLen])
		off += nameLen
		length := int(endian.Uint16(b[off:off+2])) + 1
		off += 2
		fields = append(fields, FieldHeader{Name: name, Length: length})
	}
	return fields, off, nil
}

// DecodeFromReaderAt parses a file header directly from an io.ReaderAt
// (typically an *os.File), without requiring the caller to already know
// the header's byte length — it reads the count, then grows its read
// window one field at a time. This is what TypeDescriptor registration
// uses to discover an existing file's header size before it can construct
// a slotfile.SlotFile (which needs that size up front).
func DecodeFromReaderAt(r io.ReaderAt) ([]FieldHeader, int64, error) {
	var countBuf [2]byte
	if _, err := r.ReadAt(countBuf[:], 0); err != nil {
		return nil, 0, errors.Wrap(err, "header: read field count")
	}
	count := int(endian.Uint16(countBuf[:])) + 1
	off := int64(2)

	fields := make([]FieldHeader, 0, count)
	for i := 0; i < count; i++ {
		var nameLenBuf [1]byte
		if _, err := r.ReadAt(nameLenBuf[:], off); err != nil {
			return nil, 0, errors.Wrapf(err, "header: read field %d name length", i)
		}
		nameLen := int(nameLenBuf[0]) + 1
		off++

		nameBuf := make([]byte, nameLen)
		if _, err := r.ReadAt(nameBuf, off); err != nil {
			return nil, 0, errors.Wrapf(err, "header: read field %d name", i)
		}
		off += int64(nameLen)

		var lenBuf [2]byte
		if _, err := r.ReadAt(lenBuf[:], off); err != nil {
			return nil, 0, errors.Wrapf(err, "header: read field %d length", i)
		}
		off += 2

		fields = append(fields, FieldHeader{Name: string(nameBuf), Length: int(endian.Uint16(lenBuf[:])) + 1})
	}
	return fields, off, nil
}

// Size computes the encoded header size for a field list without
// allocating the encoding itself.
func Size(fields []FieldHeader) int {
	size := 2
	for _, f := range fields {
		size += 1 + len(f.Name) + 2
	}
	return size
}
