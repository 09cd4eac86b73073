package slotfile

import (
	"os"
	"testing"

	. "github.com/dropbox/godropbox/gocheck2"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type SlotFileSuite struct{}

var _ = Suite(&SlotFileSuite{})

func (s *SlotFileSuite) TestAllocateReadWrite(c *C) {
	path := c.MkDir() + "/test.dbobj"
	sf, err := Open(path, 8, 4)
	c.Assert(err, IsNil)
	c.Assert(sf.WriteHeader([]byte{1, 2, 3, 4, 5, 6, 7, 8}), IsNil)

	id, err := sf.AllocateSlot()
	c.Assert(err, IsNil)
	c.Assert(id, Equals, int64(0))

	c.Assert(sf.WriteSlot([]byte{9, 9, 9, 9}, id), IsNil)
	buf := make([]byte, 4)
	c.Assert(sf.ReadSlot(buf, id), IsNil)
	c.Assert(buf, DeepEquals, []byte{9, 9, 9, 9})

	hdr, err := sf.ReadHeader(8)
	c.Assert(err, IsNil)
	c.Assert(hdr, DeepEquals, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	c.Assert(sf.Close(), IsNil)
}

func (s *SlotFileSuite) TestReopenComputesNumSlots(c *C) {
	path := c.MkDir() + "/test.dbobj"
	sf, err := Open(path, 8, 4)
	c.Assert(err, IsNil)
	c.Assert(sf.WriteHeader(make([]byte, 8)), IsNil)
	for i := 0; i < 3; i++ {
		_, err := sf.AllocateSlot()
		c.Assert(err, IsNil)
	}
	c.Assert(sf.Close(), IsNil)

	sf2, err := Open(path, 8, 4)
	c.Assert(err, IsNil)
	c.Assert(sf2.NumSlots, Equals, int64(3))
	c.Assert(sf2.Close(), IsNil)
}

func (s *SlotFileSuite) TestOutOfRangeSlotFails(c *C) {
	path := c.MkDir() + "/test.dbobj"
	sf, err := Open(path, 0, 4)
	c.Assert(err, IsNil)
	buf := make([]byte, 4)
	c.Assert(sf.ReadSlot(buf, 0), NotNil)
}

func (s *SlotFileSuite) TestExists(c *C) {
	path := c.MkDir() + "/test.dbobj"
	sf, err := Open(path, 0, 4)
	c.Assert(err, IsNil)
	exists, err := sf.Exists()
	c.Assert(err, IsNil)
	c.Assert(exists, IsFalse)

	c.Assert(sf.WriteHeader([]byte{1}), IsNil)
	exists, err = sf.Exists()
	c.Assert(err, IsNil)
	c.Assert(exists, IsTrue)
	c.Assert(sf.Close(), IsNil)
	os.Remove(path)
}
