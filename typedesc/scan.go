// This file implements spec §4.4's scan engine for a single
// TypeDescriptor: the synchronous Fetch/FetchFull/Count entry points used
// when the database has no worker pool, and the ranged variants
// a parallel worker calls against its own slice of slot ids. Grounded on
// the teacher's heap_file/scan.go iteration loop (read options byte, skip
// tombstones, decode, apply predicate), reused here for both the startup
// free-queue rebuild (see lifecycle.go) and these scans.
package typedesc

import (
	"github.com/fuziot/fuziotdb"
	"github.com/fuziot/fuziotdb/scan"
)

// Fetch evaluates pred over every live slot's requested-field projection,
// acquiring the read lock for the duration of the scan.
func (t *TypeDescriptor) Fetch(fields []string, pred fuziotdb.CancellablePredicate) ([]fuziotdb.Projection, error) {
	fieldIdx, err := t.resolveProjection(fields)
	if err != nil {
		return nil, err
	}
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.scanRangeProjection(scan.Range{Start: 0, Count: t.sf.NumSlots}, fieldIdx, pred)
}

// FetchFull evaluates pred over every live slot's fully decoded Record.
func (t *TypeDescriptor) FetchFull(pred fuziotdb.FullCancellablePredicate) ([]fuziotdb.Record, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.scanRangeFull(scan.Range{Start: 0, Count: t.sf.NumSlots}, pred)
}

// Count returns the number of live slots satisfying pred.
func (t *TypeDescriptor) Count(fields []string, pred fuziotdb.CancellablePredicate) (int64, error) {
	fieldIdx, err := t.resolveProjection(fields)
	if err != nil {
		return 0, err
	}
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.countRangeProjection(scan.Range{Start: 0, Count: t.sf.NumSlots}, fieldIdx, pred)
}

// ScanRange evaluates pred over the live slots in r, for use by a pool
// worker that already resolved fieldIdx via ResolveProjection. Callers
// are responsible for holding the type's read lock for the duration of a
// parallel scan (package db does this once for the whole dispatch, not
// once per worker).
func (t *TypeDescriptor) ScanRange(r scan.Range, fieldIdx []int, pred fuziotdb.CancellablePredicate) ([]fuziotdb.Projection, error) {
	return t.scanRangeProjection(r, fieldIdx, pred)
}

// ScanRangeFull is ScanRange's FetchFull counterpart.
func (t *TypeDescriptor) ScanRangeFull(r scan.Range, pred fuziotdb.FullCancellablePredicate) ([]fuziotdb.Record, error) {
	return t.scanRangeFull(r, pred)
}

// CountRange is ScanRange's Count counterpart.
func (t *TypeDescriptor) CountRange(r scan.Range, fieldIdx []int, pred fuziotdb.CancellablePredicate) (int64, error) {
	return t.countRangeProjection(r, fieldIdx, pred)
}

// ResolveProjection exposes field-name resolution to package db, which
// resolves once per dispatched scan and hands the same []int to every
// worker.
func (t *TypeDescriptor) ResolveProjection(fields []string) ([]int, error) {
	return t.resolveProjection(fields)
}

func (t *TypeDescriptor) scanRangeProjection(r scan.Range, fieldIdx []int, pred fuziotdb.CancellablePredicate) ([]fuziotdb.Projection, error) {
	var results []fuziotdb.Projection
	cancel := false
	slotBuf := make([]byte, t.slotSize)
	end := r.Start + r.Count
	for id := r.Start; id < end; id++ {
		if err := t.sf.ReadSlot(slotBuf, id); err != nil {
			return nil, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: scan read slot")
		}
		if slotBuf[0]&deletedBit != 0 {
			continue
		}
		proj, err := t.decodeProjection(slotBuf, fuziotdb.SlotID(id), fieldIdx)
		if err != nil {
			return nil, err
		}
		if pred(proj, &cancel) {
			results = append(results, proj)
		}
		if cancel {
			break
		}
	}
	return results, nil
}

func (t *TypeDescriptor) scanRangeFull(r scan.Range, pred fuziotdb.FullCancellablePredicate) ([]fuziotdb.Record, error) {
	var results []fuziotdb.Record
	cancel := false
	slotBuf := make([]byte, t.slotSize)
	end := r.Start + r.Count
	for id := r.Start; id < end; id++ {
		if err := t.sf.ReadSlot(slotBuf, id); err != nil {
			return nil, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: scan read slot")
		}
		if slotBuf[0]&deletedBit != 0 {
			continue
		}
		rec, err := t.decodeFull(slotBuf)
		if err != nil {
			return nil, err
		}
		if pred(rec, &cancel) {
			results = append(results, rec)
		}
		if cancel {
			break
		}
	}
	return results, nil
}

func (t *TypeDescriptor) countRangeProjection(r scan.Range, fieldIdx []int, pred fuziotdb.CancellablePredicate) (int64, error) {
	var count int64
	cancel := false
	slotBuf := make([]byte, t.slotSize)
	end := r.Start + r.Count
	for id := r.Start; id < end; id++ {
		if err := t.sf.ReadSlot(slotBuf, id); err != nil {
			return 0, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: scan read slot")
		}
		if slotBuf[0]&deletedBit != 0 {
			continue
		}
		proj, err := t.decodeProjection(slotBuf, fuziotdb.SlotID(id), fieldIdx)
		if err != nil {
			return 0, err
		}
		if pred(proj, &cancel) {
			count++
		}
		if cancel {
			break
		}
	}
	return count, nil
}
