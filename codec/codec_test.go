package codec

import (
	"math/big"
	"testing"

	. "github.com/dropbox/godropbox/gocheck2"
	"github.com/google/uuid"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type CodecSuite struct{}

var _ = Suite(&CodecSuite{})

func (s *CodecSuite) TestBoolMajority(c *C) {
	v, err := Bool.DecodeFixed([]byte{0xFF})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, true)

	v, err = Bool.DecodeFixed([]byte{0x00})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, false)

	// A single bit flip should not change the decoded value (>=5 bits set
	// still reads true).
	v, err = Bool.DecodeFixed([]byte{0xFE})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, true)
}

func (s *CodecSuite) TestIntegerRoundTrip(c *C) {
	b, err := Int32.EncodeFixed(int32(-7))
	c.Assert(err, IsNil)
	c.Assert(len(b), Equals, 4)
	v, err := Int32.DecodeFixed(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, int32(-7))

	b, err = Uint64.EncodeFixed(uint64(1) << 40)
	c.Assert(err, IsNil)
	v, err = Uint64.DecodeFixed(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, uint64(1)<<40)
}

func (s *CodecSuite) TestInt32LittleEndianBytes(c *C) {
	b, err := Int32.EncodeFixed(int32(3))
	c.Assert(err, IsNil)
	c.Assert(b, DeepEquals, []byte{3, 0, 0, 0})
}

func (s *CodecSuite) TestFloatRoundTrip(c *C) {
	b, err := Float64.EncodeFixed(3.14159)
	c.Assert(err, IsNil)
	v, err := Float64.DecodeFixed(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, 3.14159)
}

func (s *CodecSuite) TestFloat16RoundTrip(c *C) {
	b, err := Float16.EncodeFixed(float32(1.5))
	c.Assert(err, IsNil)
	c.Assert(len(b), Equals, 2)
	v, err := Float16.DecodeFixed(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, float32(1.5))
}

func (s *CodecSuite) TestUUIDRoundTrip(c *C) {
	u := uuid.New()
	b, err := UUID.EncodeFixed(u)
	c.Assert(err, IsNil)
	c.Assert(len(b), Equals, 16)
	v, err := UUID.DecodeFixed(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, u)
}

func (s *CodecSuite) TestBigIntRoundTrip(c *C) {
	for _, x := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		b, err := BigInt.EncodeFixed(big.NewInt(x))
		c.Assert(err, IsNil)
		c.Assert(len(b), Equals, 16)
		v, err := BigInt.DecodeFixed(b)
		c.Assert(err, IsNil)
		c.Assert(v.(*big.Int).Int64(), Equals, x)
	}
}

func (s *CodecSuite) TestASCIIStringTruncateAndPad(c *C) {
	b, err := ASCIIString.EncodeFlex("hi", 8)
	c.Assert(err, IsNil)
	c.Assert(len(b), Equals, 8)
	v, err := ASCIIString.DecodeFlex(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, "hi")

	b, err = ASCIIString.EncodeFlex("this is too long", 4)
	c.Assert(err, IsNil)
	v, err = ASCIIString.DecodeFlex(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, "this")
}

func (s *CodecSuite) TestUTF16StringRoundTrip(c *C) {
	b, err := UTF16String.EncodeFlex("hi", 8)
	c.Assert(err, IsNil)
	c.Assert(len(b), Equals, 8)
	v, err := UTF16String.DecodeFlex(b)
	c.Assert(err, IsNil)
	c.Assert(v, Equals, "hi")
}

func (s *CodecSuite) TestBytesCodec(c *C) {
	b, err := Bytes.EncodeFlex([]byte{1, 2, 3}, 5)
	c.Assert(err, IsNil)
	c.Assert(b, DeepEquals, []byte{1, 2, 3, 0, 0})
}

func (s *CodecSuite) TestUsageMismatch(c *C) {
	_, err := Int32.EncodeFlex(int32(1), 4)
	c.Assert(err, NotNil)
	_, err = ASCIIString.EncodeFixed("x")
	c.Assert(err, NotNil)
}

func (s *CodecSuite) TestLookup(c *C) {
	codec, ok := Lookup("int32")
	c.Assert(ok, IsTrue)
	c.Assert(codec, Equals, Codec(Int32))

	_, ok = Lookup("nonexistent")
	c.Assert(ok, IsFalse)
}
