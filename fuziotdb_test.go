package fuziotdb

import (
	"testing"

	. "github.com/dropbox/godropbox/gocheck2"
	"github.com/fuziot/fuziotdb/codec"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type FieldSuite struct{}

var _ = Suite(&FieldSuite{})

func (s *FieldSuite) TestNewFieldFixed(c *C) {
	f, err := NewField("a", codec.Int32, 0)
	c.Assert(err, IsNil)
	c.Assert(f.Length, Equals, 4)
}

func (s *FieldSuite) TestNewFieldFlexible(c *C) {
	f, err := NewField("bb", codec.ASCIIString, 8)
	c.Assert(err, IsNil)
	c.Assert(f.Length, Equals, 8)
}

func (s *FieldSuite) TestNewFieldRejectsEmptyName(c *C) {
	_, err := NewField("", codec.Int32, 0)
	c.Assert(err, NotNil)
	c.Assert(Is(err, InvalidSchema), IsTrue)
}

func (s *FieldSuite) TestNewFieldRejectsNonASCII(c *C) {
	_, err := NewField("café", codec.Int32, 0)
	c.Assert(err, NotNil)
	c.Assert(Is(err, InvalidSchema), IsTrue)
}

func (s *FieldSuite) TestFieldEqualIgnoresCodec(c *C) {
	a, _ := NewField("x", codec.Int32, 0)
	b := Field{Name: "x", Length: 4, Codec: codec.Uint32}
	c.Assert(a.Equal(b), IsTrue)
}

func (s *FieldSuite) TestSchemaValidate(c *C) {
	schema := Schema{Fields: []Field{
		{Name: "a", Length: 4, Codec: codec.Int32},
	}}
	c.Assert(schema.Validate(), IsNil)
	c.Assert(schema.SlotSize(), Equals, 5)
}

func (s *FieldSuite) TestSchemaValidateRejectsEmpty(c *C) {
	c.Assert(Schema{}.Validate(), NotNil)
}

func (s *FieldSuite) TestSchemaValidateRejectsDuplicate(c *C) {
	schema := Schema{Fields: []Field{
		{Name: "a", Length: 4, Codec: codec.Int32},
		{Name: "a", Length: 4, Codec: codec.Int32},
	}}
	c.Assert(schema.Validate(), NotNil)
}

func (s *FieldSuite) TestSameFieldSetIgnoresOrder(c *C) {
	a := Schema{Fields: []Field{
		{Name: "a", Length: 4},
		{Name: "b", Length: 8},
	}}
	b := Schema{Fields: []Field{
		{Name: "b", Length: 8},
		{Name: "a", Length: 4},
	}}
	c.Assert(SameFieldSet(a, b), IsTrue)
}

type NamingSuite struct{}

var _ = Suite(&NamingSuite{})

func (s *NamingSuite) TestSnakeCase(c *C) {
	cases := map[string]string{
		"User":          "user",
		"UserAccountID": "user_account_id",
		"DBHandle":      "dbhandle",
		"simpleName":    "simple_name",
		"A.B C":         "abc",
	}
	for in, want := range cases {
		c.Assert(SnakeCase(in), Equals, want)
	}
}

func (s *NamingSuite) TestFilePath(c *C) {
	c.Assert(FilePath("/data", "UserAccount"), Equals, "/data/user_account.dbobj")
}
