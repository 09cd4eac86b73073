// Package endian normalizes byte buffers to and from the little-endian
// representation that FuziotDB uses for every multi-byte integer on disk.
//
// Codecs decide whether a value needs normalization (EndianSensitive);
// this package only knows how to flip bytes.
package endian

import "unsafe"

// hostIsBigEndian is computed once at init time instead of per call.
var hostIsBigEndian = func() bool {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	return b[0] == 0
}()

// ToLittleEndian rewrites b in place so that it holds the little-endian
// encoding of the value it currently holds in host byte order.
func ToLittleEndian(b []byte) {
	if hostIsBigEndian {
		reverse(b)
	}
}

// FromLittleEndian rewrites b in place, converting a little-endian on-disk
// payload into host byte order.
func FromLittleEndian(b []byte) {
	if hostIsBigEndian {
		reverse(b)
	}
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// NormalizeElements applies ToLittleEndian independently to each elemSize
// chunk of b, for flexible payloads that hold a sequence of multi-byte
// elements (e.g. UTF-16 code units) rather than a single scalar.
func NormalizeElements(b []byte, elemSize int) {
	if elemSize <= 1 {
		return
	}
	for off := 0; off+elemSize <= len(b); off += elemSize {
		ToLittleEndian(b[off : off+elemSize])
	}
}

// PutUint16 writes v into b[0:2] in little-endian order. Shift-based
// encoding is endian-agnostic by construction (unlike an unsafe pointer
// cast onto a native uint16 would be), so this needs no host detection;
// it is provided for symmetry with ToLittleEndian/FromLittleEndian so
// callers never need encoding/binary directly for header integers.
func PutUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// Uint16 reads a little-endian uint16 from b[0:2].
func Uint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

