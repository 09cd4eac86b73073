package pool

import (
	"sync/atomic"
	"testing"

	"github.com/dropbox/godropbox/errors"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type PoolSuite struct{}

var _ = Suite(&PoolSuite{})

func (s *PoolSuite) TestDispatchRunsAllJobs(c *C) {
	p := New(4)
	var count int64
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = func() error {
			atomic.AddInt64(&count, 1)
			return nil
		}
	}
	c.Assert(p.Dispatch(jobs), IsNil)
	c.Assert(count, Equals, int64(20))
}

func (s *PoolSuite) TestDispatchPropagatesFirstError(c *C) {
	p := New(2)
	boom := errors.New("boom")
	jobs := []Job{
		func() error { return nil },
		func() error { return boom },
	}
	err := p.Dispatch(jobs)
	c.Assert(err, NotNil)
}

func (s *PoolSuite) TestDisabledPoolRefusesDispatch(c *C) {
	p := New(0)
	err := p.Dispatch([]Job{func() error { return nil }})
	c.Assert(err, NotNil)
}

func (s *PoolSuite) TestEmptyJobListIsNoop(c *C) {
	p := New(0)
	c.Assert(p.Dispatch(nil), IsNil)
}

func (s *PoolSuite) TestSizeReflectsConstructorArgument(c *C) {
	c.Assert(New(8).Size(), Equals, 8)
	c.Assert(New(-1).Size(), Equals, 0)
}

func (s *PoolSuite) TestShutdownWaitsForInFlightDispatch(c *C) {
	p := New(2)
	started := make(chan struct{})
	release := make(chan struct{})
	var finished int64

	done := make(chan error, 1)
	go func() {
		done <- p.Dispatch([]Job{func() error {
			close(started)
			<-release
			atomic.AddInt64(&finished, 1)
			return nil
		}})
	}()

	<-started
	shutdownDone := make(chan struct{})
	go func() {
		c.Check(p.Shutdown(), IsNil)
		close(shutdownDone)
	}()

	close(release)
	c.Assert(<-done, IsNil)
	<-shutdownDone
	c.Assert(atomic.LoadInt64(&finished), Equals, int64(1))
}

func (s *PoolSuite) TestDispatchAfterShutdownFails(c *C) {
	p := New(2)
	c.Assert(p.Shutdown(), IsNil)
	err := p.Dispatch([]Job{func() error { return nil }})
	c.Assert(err, NotNil)
}
