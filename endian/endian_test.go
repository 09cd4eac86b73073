package endian

import (
	. "gopkg.in/check.v1"
	"testing"
)

func Test(t *testing.T) { TestingT(t) }

type EndianSuite struct{}

var _ = Suite(&EndianSuite{})

func (s *EndianSuite) TestRoundTrip(c *C) {
	b := []byte{1, 2, 3, 4}
	orig := append([]byte{}, b...)
	ToLittleEndian(b)
	FromLittleEndian(b)
	c.Assert(b, DeepEquals, orig)
}

func (s *EndianSuite) TestReverseOnBigEndianHost(c *C) {
	b := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if hostIsBigEndian {
		ToLittleEndian(b)
		c.Assert(b, DeepEquals, []byte{0xDD, 0xCC, 0xBB, 0xAA})
	} else {
		ToLittleEndian(b)
		c.Assert(b, DeepEquals, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	}
}
