package codec

// Bytes is the flexible raw-buffer codec: not endian-sensitive, one byte
// per element, truncates or zero-pads to the declared length.
var Bytes = &flexCodec{
	name:            "bytes",
	bytesPerElement: 1,
	endian:          false,
	encode: func(value interface{}, length int) ([]byte, error) {
		b, ok := value.([]byte)
		if !ok {
			return nil, WrongType("bytes", "[]byte", value)
		}
		out := make([]byte, length)
		copy(out, b)
		return out, nil
	},
	decode: func(payload []byte) (interface{}, error) {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	},
}
