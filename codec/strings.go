package codec

import (
	"unicode/utf16"
)

type flexCodec struct {
	name            string
	bytesPerElement int
	endian          bool
	encode          func(value interface{}, length int) ([]byte, error)
	decode          func(payload []byte) (interface{}, error)
}

func (f *flexCodec) Name() string          { return f.name }
func (f *flexCodec) Kind() Kind            { return Flexible }
func (f *flexCodec) EndianSensitive() bool { return f.endian }
func (f *flexCodec) FixedLen() int         { panic(UsageMismatch(f, true)) }
func (f *flexCodec) BytesPerElement() int  { return f.bytesPerElement }

func (f *flexCodec) EncodeFixed(interface{}) ([]byte, error) {
	return nil, UsageMismatch(f, true)
}

func (f *flexCodec) DecodeFixed([]byte) (interface{}, error) {
	return nil, UsageMismatch(f, true)
}

func (f *flexCodec) EncodeFlex(value interface{}, length int) ([]byte, error) {
	return f.encode(value, length)
}

func (f *flexCodec) DecodeFlex(payload []byte) (interface{}, error) {
	return f.decode(payload)
}

// ASCIIString is a flexible codec whose declared element count is the
// number of ASCII bytes. Longer strings are truncated; shorter strings are
// zero-padded.
var ASCIIString = &flexCodec{
	name:            "ascii_string",
	bytesPerElement: 1,
	endian:          false,
	encode: func(value interface{}, length int) ([]byte, error) {
		s, ok := value.(string)
		if !ok {
			return nil, WrongType("ascii_string", "string", value)
		}
		out := make([]byte, length)
		copy(out, s)
		return out, nil
	},
	decode: func(payload []byte) (interface{}, error) {
		end := len(payload)
		for end > 0 && payload[end-1] == 0 {
			end--
		}
		return string(payload[:end]), nil
	},
}

// UTF16String is a flexible codec with bytes-per-element 2. Each UTF-16
// code unit is endian-sensitive individually; the caller's declared
// element count is the number of UTF-16 code units, not bytes.
var UTF16String = &flexCodec{
	name:            "utf16_string",
	bytesPerElement: 2,
	endian:          true,
	encode: func(value interface{}, length int) ([]byte, error) {
		s, ok := value.(string)
		if !ok {
			return nil, WrongType("utf16_string", "string", value)
		}
		units := utf16.Encode([]rune(s))
		numUnits := length / 2
		out := make([]byte, length)
		for i := 0; i < numUnits && i < len(units); i++ {
			u := units[i]
			out[2*i] = byte(u)
			out[2*i+1] = byte(u >> 8)
		}
		return out, nil
	},
	decode: func(payload []byte) (interface{}, error) {
		units := make([]uint16, 0, len(payload)/2)
		for i := 0; i+1 < len(payload); i += 2 {
			u := uint16(payload[i]) | uint16(payload[i+1])<<8
			if u == 0 {
				break
			}
			units = append(units, u)
		}
		return string(utf16.Decode(units)), nil
	},
}
