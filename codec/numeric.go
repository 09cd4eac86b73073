package codec

import (
	"math"
	"math/bits"

	"github.com/dropbox/godropbox/errors"
)

// fixedCodec implements the common shape of every fixed-length numeric
// codec: encode/decode to/from a known-size byte slice via closures.
type fixedCodec struct {
	name      string
	len       int
	endian    bool
	encode    func(interface{}) ([]byte, error)
	decode    func([]byte) (interface{}, error)
}

func (f *fixedCodec) Name() string          { return f.name }
func (f *fixedCodec) Kind() Kind            { return Fixed }
func (f *fixedCodec) EndianSensitive() bool { return f.endian }
func (f *fixedCodec) FixedLen() int         { return f.len }
func (f *fixedCodec) BytesPerElement() int  { panic(UsageMismatch(f, false)) }

func (f *fixedCodec) EncodeFixed(value interface{}) ([]byte, error) {
	return f.encode(value)
}

func (f *fixedCodec) DecodeFixed(payload []byte) (interface{}, error) {
	if len(payload) != f.len {
		return nil, errors.Newf("codec %s: expected %d bytes, got %d", f.name, f.len, len(payload))
	}
	return f.decode(payload)
}

func (f *fixedCodec) EncodeFlex(interface{}, int) ([]byte, error) {
	return nil, UsageMismatch(f, false)
}

func (f *fixedCodec) DecodeFlex([]byte) (interface{}, error) {
	return nil, UsageMismatch(f, false)
}

func newFixedCodec(name string, n int, endian bool, enc func(interface{}) ([]byte, error), dec func([]byte) (interface{}, error)) Codec {
	checkFixedLen(name, n)
	return &fixedCodec{name: name, len: n, endian: endian, encode: enc, decode: dec}
}

// Bool is the spec's 1-byte boolean codec: 0x00/0xFF on write, popcount
// majority (>=5 set bits => true) on read. It deliberately tolerates single
// bit flips (spec §9).
var Bool = newFixedCodec("bool", 1, false,
	func(v interface{}) ([]byte, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, WrongType("bool", "bool", v)
		}
		if b {
			return []byte{0xFF}, nil
		}
		return []byte{0x00}, nil
	},
	func(p []byte) (interface{}, error) {
		return bits.OnesCount8(p[0]) >= 5, nil
	},
)

var Uint8 = newFixedCodec("uint8", 1, false,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(uint8)
		if !ok {
			return nil, WrongType("uint8", "uint8", v)
		}
		return []byte{x}, nil
	},
	func(p []byte) (interface{}, error) { return p[0], nil },
)

var Int8 = newFixedCodec("int8", 1, false,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(int8)
		if !ok {
			return nil, WrongType("int8", "int8", v)
		}
		return []byte{byte(x)}, nil
	},
	func(p []byte) (interface{}, error) { return int8(p[0]), nil },
)

var Uint16 = newFixedCodec("uint16", 2, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(uint16)
		if !ok {
			return nil, WrongType("uint16", "uint16", v)
		}
		return []byte{byte(x), byte(x >> 8)}, nil
	},
	func(p []byte) (interface{}, error) {
		return uint16(p[0]) | uint16(p[1])<<8, nil
	},
)

var Int16 = newFixedCodec("int16", 2, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(int16)
		if !ok {
			return nil, WrongType("int16", "int16", v)
		}
		u := uint16(x)
		return []byte{byte(u), byte(u >> 8)}, nil
	},
	func(p []byte) (interface{}, error) {
		return int16(uint16(p[0]) | uint16(p[1])<<8), nil
	},
)

var Uint32 = newFixedCodec("uint32", 4, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(uint32)
		if !ok {
			return nil, WrongType("uint32", "uint32", v)
		}
		return []byte{byte(x), byte(x >> 8), byte(x >> 16), byte(x >> 24)}, nil
	},
	func(p []byte) (interface{}, error) {
		return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24, nil
	},
)

var Int32 = newFixedCodec("int32", 4, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(int32)
		if !ok {
			return nil, WrongType("int32", "int32", v)
		}
		u := uint32(x)
		return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}, nil
	},
	func(p []byte) (interface{}, error) {
		u := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
		return int32(u), nil
	},
)

var Uint64 = newFixedCodec("uint64", 8, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(uint64)
		if !ok {
			return nil, WrongType("uint64", "uint64", v)
		}
		return uint64ToBytes(x), nil
	},
	func(p []byte) (interface{}, error) { return bytesToUint64(p), nil },
)

var Int64 = newFixedCodec("int64", 8, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(int64)
		if !ok {
			return nil, WrongType("int64", "int64", v)
		}
		return uint64ToBytes(uint64(x)), nil
	},
	func(p []byte) (interface{}, error) { return int64(bytesToUint64(p)), nil },
)

func uint64ToBytes(x uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(x >> (8 * i))
	}
	return b
}

func bytesToUint64(p []byte) uint64 {
	var x uint64
	for i := 0; i < 8; i++ {
		x |= uint64(p[i]) << (8 * i)
	}
	return x
}

var Float32 = newFixedCodec("float32", 4, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(float32)
		if !ok {
			return nil, WrongType("float32", "float32", v)
		}
		bits := math.Float32bits(x)
		return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}, nil
	},
	func(p []byte) (interface{}, error) {
		bits := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
		return math.Float32frombits(bits), nil
	},
)

var Float64 = newFixedCodec("float64", 8, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(float64)
		if !ok {
			return nil, WrongType("float64", "float64", v)
		}
		return uint64ToBytes(math.Float64bits(x)), nil
	},
	func(p []byte) (interface{}, error) {
		return math.Float64frombits(bytesToUint64(p)), nil
	},
)
