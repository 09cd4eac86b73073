package db

import "github.com/fuziot/fuziotdb"

// Handle is returned by an async variant of a dispatch method; callers
// observe its result via WaitForResult, per spec §4.7's "async variants
// returning a handle that exposes wait_for_result()".
type Handle struct {
	done   chan struct{}
	result interface{}
	err    error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) finish(result interface{}, err error) {
	h.result = result
	h.err = err
	close(h.done)
}

// WaitForResult blocks until the dispatched action completes, returning
// its result and error.
func (h *Handle) WaitForResult() (interface{}, error) {
	<-h.done
	return h.result, h.err
}

// FetchAsync dispatches Fetch on a background goroutine and returns a
// Handle. Because the façade is single-action-at-a-time across the pool
// (spec §5), a second async (or synchronous) call against the same
// Database blocks until this one's dispatch finishes, not until
// WaitForResult is called.
func (d *Database) FetchAsync(typeName string, fields []string, pred fuziotdb.CancellablePredicate) *Handle {
	h := newHandle()
	go func() {
		result, err := d.Fetch(typeName, fields, pred)
		h.finish(result, err)
	}()
	return h
}

// FetchFullAsync is FetchAsync's full-record counterpart.
func (d *Database) FetchFullAsync(typeName string, pred fuziotdb.FullCancellablePredicate) *Handle {
	h := newHandle()
	go func() {
		result, err := d.FetchFull(typeName, pred)
		h.finish(result, err)
	}()
	return h
}

// CountAsync is FetchAsync's counting counterpart.
func (d *Database) CountAsync(typeName string, fields []string, pred fuziotdb.CancellablePredicate) *Handle {
	h := newHandle()
	go func() {
		result, err := d.Count(typeName, fields, pred)
		h.finish(result, err)
	}()
	return h
}
