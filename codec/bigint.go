package codec

import (
	"math/big"

	"github.com/dropbox/godropbox/errors"
)

// BigInt stores a *big.Int in a fixed 16-byte big-endian two's-complement
// field. The codec reports itself as not endian-sensitive: the bytes come
// from big.Int's own big-endian form and are written as they are, with no
// dependence on host byte order.
var BigInt = newFixedCodec("bigint", 16, false,
	func(v interface{}) ([]byte, error) {
		x, ok := v.(*big.Int)
		if !ok {
			return nil, WrongType("bigint", "*big.Int", v)
		}
		b := x.Bytes()
		if len(b) > 16 {
			return nil, errors.Newf("bigint codec: value does not fit in 16 bytes")
		}
		out := make([]byte, 16)
		copy(out[16-len(b):], b)
		if x.Sign() < 0 {
			twosComplement(out)
		}
		return out, nil
	},
	func(p []byte) (interface{}, error) {
		negative := p[0]&0x80 != 0
		buf := make([]byte, 16)
		copy(buf, p)
		if negative {
			twosComplement(buf)
			x := new(big.Int).SetBytes(buf)
			return x.Neg(x), nil
		}
		return new(big.Int).SetBytes(buf), nil
	},
)

func twosComplement(b []byte) {
	carry := byte(1)
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = ^b[i] + carry
		if b[i] != 0 {
			carry = 0
		}
	}
}
