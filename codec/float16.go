package codec

import (
	"math"
)

// Float16 is a hand-rolled IEEE-754 half-precision codec. The standard
// library has no half-float type, unlike float32/float64 which reuse
// math.Float32bits/Float64bits; this is the one numeric codec that can't
// be grounded on a library function.
var Float16 = newFixedCodec("float16", 2, true,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(float32)
		if !ok {
			return nil, WrongType("float16", "float32", v)
		}
		bits := float32ToHalf(x)
		return []byte{byte(bits), byte(bits >> 8)}, nil
	},
	func(p []byte) (interface{}, error) {
		bits := uint16(p[0]) | uint16(p[1])<<8
		return halfToFloat32(bits), nil
	},
)

func float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	mant := bits & 0x7FFFFF

	switch {
	case exp <= 0:
		return sign
	case exp >= 31:
		return sign | 0x7C00
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}

func halfToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h&0x7C00) >> 10
	mant := uint32(h & 0x03FF)

	switch exp {
	case 0:
		return math.Float32frombits(sign)
	case 0x1F:
		return math.Float32frombits(sign | 0x7F800000 | mant<<13)
	default:
		return math.Float32frombits(sign | (exp-15+127)<<23 | mant<<13)
	}
}
