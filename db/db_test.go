package db

import (
	"testing"

	"github.com/fuziot/fuziotdb"
	"github.com/fuziot/fuziotdb/codec"
	"github.com/fuziot/fuziotdb/typedesc"

	. "github.com/dropbox/godropbox/gocheck2"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type DBSuite struct{}

var _ = Suite(&DBSuite{})

func newTestDB(c *C, workers int) *Database {
	return Open(Options{WorkerCount: &workers, DatabaseDir: c.MkDir()})
}

func registerUser(c *C, d *Database) {
	b := typedesc.NewBuilder()
	c.Assert(b.Add("age", codec.Int32, 0), IsNil)
	c.Assert(b.Add("name", codec.ASCIIString, 8), IsNil)
	c.Assert(d.Register("User", b, false), IsNil)
}

func (s *DBSuite) TestRegisterPushFetchSynchronous(c *C) {
	d := newTestDB(c, 0)
	registerUser(c, d)

	_, err := d.Push("User", fuziotdb.Record{int32(30), "alice"})
	c.Assert(err, IsNil)
	_, err = d.Push("User", fuziotdb.Record{int32(40), "bob"})
	c.Assert(err, IsNil)

	results, err := d.Fetch("User", []string{"name"}, func(p fuziotdb.Projection, cancel *bool) bool { return true })
	c.Assert(err, IsNil)
	c.Assert(len(results), Equals, 2)
}

func (s *DBSuite) TestParallelCountSumsAllWorkers(c *C) {
	d := newTestDB(c, 4)
	registerUser(c, d)

	for i := 0; i < 37; i++ {
		_, err := d.Push("User", fuziotdb.Record{int32(i), "x"})
		c.Assert(err, IsNil)
	}

	count, err := d.Count("User", nil, func(p fuziotdb.Projection, cancel *bool) bool { return true })
	c.Assert(err, IsNil)
	c.Assert(count, Equals, int64(37))
}

func (s *DBSuite) TestParallelFetchFullMergesAllWorkers(c *C) {
	d := newTestDB(c, 3)
	registerUser(c, d)

	for i := 0; i < 10; i++ {
		_, err := d.Push("User", fuziotdb.Record{int32(i), "x"})
		c.Assert(err, IsNil)
	}

	recs, err := d.FetchFull("User", func(r fuziotdb.Record, cancel *bool) bool { return true })
	c.Assert(err, IsNil)
	c.Assert(len(recs), Equals, 10)
}

func (s *DBSuite) TestFetchAsyncWaitForResult(c *C) {
	d := newTestDB(c, 2)
	registerUser(c, d)
	_, err := d.Push("User", fuziotdb.Record{int32(1), "a"})
	c.Assert(err, IsNil)

	h := d.FetchAsync("User", []string{"age"}, func(p fuziotdb.Projection, cancel *bool) bool { return true })
	result, err := h.WaitForResult()
	c.Assert(err, IsNil)
	projections := result.([]fuziotdb.Projection)
	c.Assert(len(projections), Equals, 1)
}

func (s *DBSuite) TestFetchSimpleNonCancellablePredicate(c *C) {
	d := newTestDB(c, 0)
	registerUser(c, d)
	_, err := d.Push("User", fuziotdb.Record{int32(1), "a"})
	c.Assert(err, IsNil)

	results, err := d.FetchSimple("User", []string{"age"}, func(p fuziotdb.Projection) bool { return true })
	c.Assert(err, IsNil)
	c.Assert(len(results), Equals, 1)
}

func (s *DBSuite) TestUnregisteredTypeFails(c *C) {
	d := newTestDB(c, 0)
	_, err := d.Push("Missing", fuziotdb.Record{})
	c.Assert(err, NotNil)
}

func (s *DBSuite) TestFreeAndPurgeThroughFacade(c *C) {
	d := newTestDB(c, 0)
	registerUser(c, d)

	var ids []fuziotdb.SlotID
	for i := 0; i < 5; i++ {
		id, err := d.Push("User", fuziotdb.Record{int32(i), "x"})
		c.Assert(err, IsNil)
		ids = append(ids, id)
	}
	c.Assert(d.FreeMany("User", []fuziotdb.SlotID{ids[1], ids[3]}), IsNil)
	c.Assert(d.Purge("User"), IsNil)

	count, err := d.Count("User", nil, func(p fuziotdb.Projection, cancel *bool) bool { return true })
	c.Assert(err, IsNil)
	c.Assert(count, Equals, int64(3))
}

func (s *DBSuite) TestUnsetWorkerCountDefaultsToParallel(c *C) {
	d := Open(Options{DatabaseDir: c.MkDir()})
	defer d.Shutdown()
	c.Assert(d.pool.Size() > 0, IsTrue)
}

func (s *DBSuite) TestZeroWorkerCountForcesSerial(c *C) {
	d := newTestDB(c, 0)
	defer d.Shutdown()
	c.Assert(d.pool.Size(), Equals, 0)
}

func (s *DBSuite) TestShutdownClosesRegisteredTypes(c *C) {
	d := newTestDB(c, 0)
	registerUser(c, d)
	c.Assert(d.Shutdown(), IsNil)
}
