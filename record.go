package fuziotdb

// SlotID identifies one slot within a type's file. Ids are stable across
// Free/recycle: a freed id may be reused by a later Push, but Free and
// Push never move a live instance to another id. Purge does: it renumbers
// the surviving instances 0..M-1.
type SlotID uint64

// Record is an ordered tuple of decoded field values, in schema order —
// the host-language value classes that deserialize from it are an
// external collaborator (spec §1); the engine only ever sees an ordered
// []interface{} tuple, mirroring the teacher's zdb2.Record.
type Record []interface{}

// Projection is what Fetch yields per matching slot: the slot id followed
// by the decoded values of the requested fields, in the order requested.
type Projection []interface{}

// SlotIDOf reads the leading slot id out of a Projection.
func (p Projection) SlotIDOf() SlotID {
	return p[0].(SlotID)
}

// Predicate is the non-cancellable scan callback: (values) -> bool.
type Predicate func(Projection) bool

// CancellablePredicate is the cancellable scan callback: setting *cancel
// to true terminates the scan after the current slot. Each range scan has
// its own flag, so in a parallel scan it stops only the worker that set
// it; the other workers scan their ranges to the end.
type CancellablePredicate func(values Projection, cancel *bool) bool

// FullPredicate and FullCancellablePredicate are FetchFull's callbacks:
// they receive the fully decoded Record instead of a field projection.
type FullPredicate func(Record) bool
type FullCancellablePredicate func(record Record, cancel *bool) bool
