package codec

import (
	"github.com/google/uuid"
)

// UUID stores a github.com/google/uuid.UUID as its canonical 16 raw bytes.
// UUIDs are not endian-sensitive: the RFC 4122 byte layout is
// architecture-independent, so the bytes are written verbatim.
var UUID = newFixedCodec("uuid", 16, false,
	func(v interface{}) ([]byte, error) {
		u, ok := v.(uuid.UUID)
		if !ok {
			return nil, WrongType("uuid", "uuid.UUID", v)
		}
		b := make([]byte, 16)
		copy(b, u[:])
		return b, nil
	},
	func(p []byte) (interface{}, error) {
		var u uuid.UUID
		copy(u[:], p)
		return u, nil
	},
)
