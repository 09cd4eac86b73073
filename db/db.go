// Package db is the FuziotDB façade: a type registry plus a worker pool,
// dispatching Push/Set/Free/Fetch/FetchFull/Count per spec §4.7. It
// mirrors the teacher's top-level zdb2.DB (interface.go), which likewise
// wraps a name -> table map behind a small public surface, generalized
// here to hold typedesc.TypeDescriptor instances instead of zdb2 tables
// and to add the async handle / worker pool dispatch spec §5 describes.
package db

import (
	"io"
	"log"
	"runtime"
	"sync"

	"github.com/fuziot/fuziotdb"
	"github.com/fuziot/fuziotdb/pool"
	"github.com/fuziot/fuziotdb/scan"
	"github.com/fuziot/fuziotdb/typedesc"
)

// Options configures a Database: a small typed config struct passed to
// Open, like the top-level config objects of the teacher's sibling
// examples.
type Options struct {
	// WorkerCount sizes the parallel-scan pool. nil (the zero value, left
	// unset by a caller writing Options{DatabaseDir: dir}) defaults to
	// runtime.NumCPU(), per spec §5. A non-nil pointer is used as given,
	// including a pointer to 0 — which explicitly disables parallel scans
	// and makes every Fetch/FetchFull/Count run synchronously on the
	// caller's goroutine.
	WorkerCount *int
	// Logger receives operational visibility messages (type registered,
	// purge/purgekeep begun/completed, shutdown). Defaults to a discard
	// logger; there is no per-record logging on the hot path.
	Logger *log.Logger
	// DatabaseDir is the directory each registered type's file lives
	// under, per spec §6's path convention.
	DatabaseDir string
}

func (o Options) withDefaults() Options {
	if o.WorkerCount == nil {
		n := runtime.NumCPU()
		o.WorkerCount = &n
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

// Database is the top-level façade: a type registry and a worker pool,
// with single-action-at-a-time dispatch across the pool (spec §4.7,
// §5).
type Database struct {
	opts Options
	pool *pool.Pool

	mu       sync.RWMutex
	registry map[string]*typedesc.TypeDescriptor

	dispatchMu sync.Mutex
}

// Open constructs a Database from opts.
func Open(opts Options) *Database {
	opts = opts.withDefaults()
	return &Database{
		opts:     opts,
		pool:     pool.New(*opts.WorkerCount),
		registry: make(map[string]*typedesc.TypeDescriptor),
	}
}

// Register builds a *typedesc.TypeDescriptor for typeName at
// <DatabaseDir>/<snake_case(typeName)>.dbobj and adds it to the registry.
func (d *Database) Register(typeName string, builder *typedesc.Builder, upgrade bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.registry[typeName]; exists {
		return fuziotdb.NewError(fuziotdb.InvalidSchema, "type %q already registered", typeName)
	}

	path := fuziotdb.FilePath(d.opts.DatabaseDir, typeName)
	td, err := typedesc.Register(builder, typeName, path, builder.Schema(), upgrade)
	if err != nil {
		return err
	}
	d.registry[typeName] = td
	d.opts.Logger.Printf("fuziotdb: registered type %q at %s", typeName, path)
	return nil
}

func (d *Database) lookup(typeName string) (*typedesc.TypeDescriptor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	td, ok := d.registry[typeName]
	if !ok {
		return nil, fuziotdb.NewError(fuziotdb.InvalidSchema, "type %q is not registered", typeName)
	}
	return td, nil
}

// Push appends a new instance of typeName.
func (d *Database) Push(typeName string, values fuziotdb.Record) (fuziotdb.SlotID, error) {
	td, err := d.lookup(typeName)
	if err != nil {
		return 0, err
	}
	return td.Push(values)
}

// Set overwrites an existing instance of typeName in place.
func (d *Database) Set(typeName string, id fuziotdb.SlotID, values fuziotdb.Record) error {
	td, err := d.lookup(typeName)
	if err != nil {
		return err
	}
	return td.Set(id, values)
}

// Free tombstones a single instance.
func (d *Database) Free(typeName string, id fuziotdb.SlotID) error {
	td, err := d.lookup(typeName)
	if err != nil {
		return err
	}
	return td.Free(id)
}

// FreeMany tombstones a batch of instances in one write-lock acquisition.
func (d *Database) FreeMany(typeName string, ids []fuziotdb.SlotID) error {
	td, err := d.lookup(typeName)
	if err != nil {
		return err
	}
	return td.FreeMany(ids)
}

// PurgeKeep zeroes every tombstoned slot's payload without shrinking the
// file.
func (d *Database) PurgeKeep(typeName string) error {
	td, err := d.lookup(typeName)
	if err != nil {
		return err
	}
	d.opts.Logger.Printf("fuziotdb: purgekeep %q begun", typeName)
	err = td.PurgeKeep()
	d.opts.Logger.Printf("fuziotdb: purgekeep %q completed", typeName)
	return err
}

// Purge compacts typeName's file, physically dropping tombstoned slots.
func (d *Database) Purge(typeName string) error {
	td, err := d.lookup(typeName)
	if err != nil {
		return err
	}
	d.opts.Logger.Printf("fuziotdb: purge %q begun", typeName)
	err = td.Purge()
	d.opts.Logger.Printf("fuziotdb: purge %q completed", typeName)
	return err
}

// wrapPredicate adapts a non-cancellable Predicate to the cancellable
// signature every scan internally uses, per spec §4.4.
func wrapPredicate(pred fuziotdb.Predicate) fuziotdb.CancellablePredicate {
	return func(values fuziotdb.Projection, cancel *bool) bool {
		return pred(values)
	}
}

func wrapFullPredicate(pred fuziotdb.FullPredicate) fuziotdb.FullCancellablePredicate {
	return func(rec fuziotdb.Record, cancel *bool) bool {
		return pred(rec)
	}
}

// FetchSimple is Fetch for callers with a non-cancellable predicate,
// spec §4.4's "(values) -> bool" signature.
func (d *Database) FetchSimple(typeName string, fields []string, pred fuziotdb.Predicate) ([]fuziotdb.Projection, error) {
	return d.Fetch(typeName, fields, wrapPredicate(pred))
}

// FetchFullSimple is FetchFull's non-cancellable counterpart.
func (d *Database) FetchFullSimple(typeName string, pred fuziotdb.FullPredicate) ([]fuziotdb.Record, error) {
	return d.FetchFull(typeName, wrapFullPredicate(pred))
}

// CountSimple is Count's non-cancellable counterpart.
func (d *Database) CountSimple(typeName string, fields []string, pred fuziotdb.Predicate) (int64, error) {
	return d.Count(typeName, fields, wrapPredicate(pred))
}

// Fetch runs a (possibly parallel) projection scan over typeName,
// dispatching across the worker pool when WorkerCount > 0 and falling
// back to a synchronous scan otherwise. The parallel path is taken
// whatever the instance count; ranges may be empty.
func (d *Database) Fetch(typeName string, fields []string, pred fuziotdb.CancellablePredicate) ([]fuziotdb.Projection, error) {
	td, err := d.lookup(typeName)
	if err != nil {
		return nil, err
	}

	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	if d.pool.Size() <= 0 {
		return td.Fetch(fields, pred)
	}

	fieldIdx, err := td.ResolveProjection(fields)
	if err != nil {
		return nil, err
	}

	td.RLock()
	defer td.RUnlock()

	ranges := scan.Partition(td.InstanceCount(), d.pool.Size())
	perWorker := make([][]fuziotdb.Projection, len(ranges))
	jobs := make([]pool.Job, len(ranges))
	for i, r := range ranges {
		i, r := i, r
		jobs[i] = func() error {
			results, err := td.ScanRange(r, fieldIdx, pred)
			if err != nil {
				return err
			}
			perWorker[i] = results
			return nil
		}
	}
	if err := d.pool.Dispatch(jobs); err != nil {
		return nil, err
	}

	var merged []fuziotdb.Projection
	for _, results := range perWorker {
		merged = append(merged, results...)
	}
	return merged, nil
}

// FetchFull is Fetch's full-record counterpart.
func (d *Database) FetchFull(typeName string, pred fuziotdb.FullCancellablePredicate) ([]fuziotdb.Record, error) {
	td, err := d.lookup(typeName)
	if err != nil {
		return nil, err
	}

	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	if d.pool.Size() <= 0 {
		return td.FetchFull(pred)
	}

	td.RLock()
	defer td.RUnlock()

	ranges := scan.Partition(td.InstanceCount(), d.pool.Size())
	perWorker := make([][]fuziotdb.Record, len(ranges))
	jobs := make([]pool.Job, len(ranges))
	for i, r := range ranges {
		i, r := i, r
		jobs[i] = func() error {
			results, err := td.ScanRangeFull(r, pred)
			if err != nil {
				return err
			}
			perWorker[i] = results
			return nil
		}
	}
	if err := d.pool.Dispatch(jobs); err != nil {
		return nil, err
	}

	var merged []fuziotdb.Record
	for _, results := range perWorker {
		merged = append(merged, results...)
	}
	return merged, nil
}

// Count is Fetch's counting counterpart; partial counts are summed across
// workers, per spec §4.4's "Result merging ... For Count, sums."
func (d *Database) Count(typeName string, fields []string, pred fuziotdb.CancellablePredicate) (int64, error) {
	td, err := d.lookup(typeName)
	if err != nil {
		return 0, err
	}

	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	if d.pool.Size() <= 0 {
		return td.Count(fields, pred)
	}

	fieldIdx, err := td.ResolveProjection(fields)
	if err != nil {
		return 0, err
	}

	td.RLock()
	defer td.RUnlock()

	ranges := scan.Partition(td.InstanceCount(), d.pool.Size())
	counts := make([]int64, len(ranges))
	jobs := make([]pool.Job, len(ranges))
	for i, r := range ranges {
		i, r := i, r
		jobs[i] = func() error {
			n, err := td.CountRange(r, fieldIdx, pred)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		}
	}
	if err := d.pool.Dispatch(jobs); err != nil {
		return 0, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Shutdown joins the worker pool (waiting for any in-flight Fetch/
// FetchFull/Count dispatch to finish and refusing new ones, per spec §5)
// and then closes every registered type's underlying file.
func (d *Database) Shutdown() error {
	poolErr := d.pool.Shutdown()

	d.mu.Lock()
	defer d.mu.Unlock()
	firstErr := poolErr
	for _, td := range d.registry {
		if err := td.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.opts.Logger.Printf("fuziotdb: shutdown")
	return firstErr
}
