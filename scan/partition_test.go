package scan

import (
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type PartitionSuite struct{}

var _ = Suite(&PartitionSuite{})

func (s *PartitionSuite) TestEvenSplit(c *C) {
	ranges := Partition(100, 4)
	c.Assert(ranges, DeepEquals, []Range{
		{Start: 0, Count: 25},
		{Start: 25, Count: 25},
		{Start: 50, Count: 25},
		{Start: 75, Count: 25},
	})
}

func (s *PartitionSuite) TestRemainderGoesToLastThread(c *C) {
	ranges := Partition(10, 3)
	c.Assert(ranges, DeepEquals, []Range{
		{Start: 0, Count: 3},
		{Start: 3, Count: 3},
		{Start: 6, Count: 4},
	})
	var total int64
	for _, r := range ranges {
		total += r.Count
	}
	c.Assert(total, Equals, int64(10))
}

func (s *PartitionSuite) TestSingleThread(c *C) {
	ranges := Partition(1000000, 1)
	c.Assert(ranges, DeepEquals, []Range{{Start: 0, Count: 1000000}})
}

func (s *PartitionSuite) TestMillionAcrossEightThreads(c *C) {
	ranges := Partition(1000000, 8)
	var total int64
	for i, r := range ranges {
		if i < 7 {
			c.Assert(r.Count, Equals, int64(125000))
		}
		total += r.Count
	}
	c.Assert(total, Equals, int64(1000000))
}

func (s *PartitionSuite) TestZeroInstances(c *C) {
	ranges := Partition(0, 4)
	c.Assert(len(ranges), Equals, 1)
	c.Assert(ranges[0].Count, Equals, int64(0))
}
