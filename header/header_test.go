package header

import (
	"bytes"
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type HeaderSuite struct{}

var _ = Suite(&HeaderSuite{})

func (s *HeaderSuite) TestEncodeMatchesSpecBytes(c *C) {
	fields := []FieldHeader{
		{Name: "a", Length: 4},
		{Name: "bb", Length: 8},
	}
	b, err := Encode(fields)
	c.Assert(err, IsNil)
	c.Assert(b, DeepEquals, []byte{
		0x01, 0x00,
		0x00, 'a', 0x03, 0x00,
		0x01, 'b', 'b', 0x07, 0x00,
	})
}

func (s *HeaderSuite) TestRoundTrip(c *C) {
	fields := []FieldHeader{
		{Name: "a", Length: 4},
		{Name: "bb", Length: 8},
		{Name: "title", Length: 256},
	}
	b, err := Encode(fields)
	c.Assert(err, IsNil)
	got, n, err := Decode(b)
	c.Assert(err, IsNil)
	c.Assert(n, Equals, len(b))
	c.Assert(got, DeepEquals, fields)
}

func (s *HeaderSuite) TestSizeMatchesEncodedLength(c *C) {
	fields := []FieldHeader{{Name: "a", Length: 4}, {Name: "bb", Length: 8}}
	b, err := Encode(fields)
	c.Assert(err, IsNil)
	c.Assert(Size(fields), Equals, len(b))
}

func (s *HeaderSuite) TestEncodeRejectsEmptySchema(c *C) {
	_, err := Encode(nil)
	c.Assert(err, NotNil)
}

func (s *HeaderSuite) TestEncodeRejectsOversizedLength(c *C) {
	_, err := Encode([]FieldHeader{{Name: "a", Length: 70000}})
	c.Assert(err, NotNil)
}

func (s *HeaderSuite) TestDecodeRejectsTruncatedBuffer(c *C) {
	_, _, err := Decode([]byte{0x00, 0x00, 0x00})
	c.Assert(err, NotNil)
}

func (s *HeaderSuite) TestDecodeFromReaderAt(c *C) {
	fields := []FieldHeader{{Name: "a", Length: 4}, {Name: "bb", Length: 8}}
	b, err := Encode(fields)
	c.Assert(err, IsNil)
	got, n, err := DecodeFromReaderAt(bytes.NewReader(b))
	c.Assert(err, IsNil)
	c.Assert(n, Equals, int64(len(b)))
	c.Assert(got, DeepEquals, fields)
}
