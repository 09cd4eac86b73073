package typedesc

import (
	"os"

	"github.com/fuziot/fuziotdb"
	"github.com/fuziot/fuziotdb/slotfile"
)

// requeue restores a drained batch of free ids, preserving order.
func (t *TypeDescriptor) requeue(ids []int64) {
	for _, id := range ids {
		t.freeList.Push(id)
	}
}

// rebuildFreeList scans every slot's options byte and enqueues the
// tombstoned ones, in file order, per spec §4.3 step 5 and §4.5 ("the set,
// not the sequence, of free ids is deterministic across restarts").
func (t *TypeDescriptor) rebuildFreeList() error {
	buf := make([]byte, 1)
	for id := int64(0); id < t.sf.NumSlots; id++ {
		if err := t.sf.ReadAt(buf, id, 0); err != nil {
			return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: rebuild free list")
		}
		if buf[0]&deletedBit != 0 {
			t.freeList.Push(id)
		}
	}
	return nil
}

// Push appends a new instance, recycling a tombstoned slot if the free
// queue is non-empty, per spec §4.3's Push procedure.
func (t *TypeDescriptor) Push(values fuziotdb.Record) (fuziotdb.SlotID, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	buf, err := t.encodeSlot(values, false)
	if err != nil {
		return 0, err
	}

	id, err := t.nextFreeSlot()
	if err != nil {
		return 0, err
	}

	if err := t.sf.WriteSlot(buf, id); err != nil {
		return 0, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: push write")
	}
	return fuziotdb.SlotID(id), nil
}

// nextFreeSlot pops candidates off the free queue until it finds one
// whose options byte is still tombstoned, discarding any stale duplicate
// left behind by a double Free along the way (spec §8 tolerates an id
// appearing twice in the queue; a duplicate's second pop must not be
// handed out as live). Falls back to allocating a brand new slot once the
// queue is exhausted.
func (t *TypeDescriptor) nextFreeSlot() (int64, error) {
	var opts [1]byte
	for {
		id, ok := t.freeList.Pop()
		if !ok {
			break
		}
		if err := t.sf.ReadAt(opts[:], id, 0); err != nil {
			return 0, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: push read options")
		}
		if opts[0]&deletedBit != 0 {
			return id, nil
		}
	}
	id, err := t.sf.AllocateSlot()
	if err != nil {
		return 0, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: push allocate")
	}
	return id, nil
}

// Set overwrites an existing slot's payload in place, preserving its
// tombstone status (the options byte is never touched), per spec §4.3's
// Set procedure.
func (t *TypeDescriptor) Set(id fuziotdb.SlotID, values fuziotdb.Record) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	slotID := int64(id)
	if slotID < 0 || slotID >= t.sf.NumSlots {
		return fuziotdb.NewError(fuziotdb.NotFound, "typedesc: slot %d not found", id)
	}

	var opts [1]byte
	if err := t.sf.ReadAt(opts[:], slotID, 0); err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: set read options")
	}

	buf, err := t.encodeSlot(values, opts[0]&deletedBit != 0)
	if err != nil {
		return err
	}
	if err := t.sf.WriteSlot(buf, slotID); err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: set write")
	}
	return nil
}

// Free tombstones a single slot id, per spec §4.3's Free procedure.
func (t *TypeDescriptor) Free(id fuziotdb.SlotID) error {
	return t.FreeMany([]fuziotdb.SlotID{id})
}

// FreeMany tombstones every id in ids, acquiring the write lock once for
// the whole batch. Free is idempotent: an already-tombstoned id is
// OR'd again (a no-op) and re-enqueued, matching spec §8's "free(id)
// followed by free(id) is idempotent ... id may appear twice in the
// queue — acceptable".
func (t *TypeDescriptor) FreeMany(ids []fuziotdb.SlotID) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, id := range ids {
		slotID := int64(id)
		if slotID < 0 || slotID >= t.sf.NumSlots {
			return fuziotdb.NewError(fuziotdb.NotFound, "typedesc: slot %d not found", id)
		}
		var opts [1]byte
		if err := t.sf.ReadAt(opts[:], slotID, 0); err != nil {
			return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: free read options")
		}
		opts[0] |= deletedBit
		if err := t.sf.WriteAt(opts[:], slotID, 0); err != nil {
			return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: free write options")
		}
		t.freeList.Push(slotID)
	}
	return nil
}

// PurgeKeep zeroes the payload of every currently-queued free slot,
// leaving the file size and the options byte (still tombstoned)
// untouched, per spec §4.3's PurgeKeep procedure.
func (t *TypeDescriptor) PurgeKeep() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	var ids []int64
	for {
		id, ok := t.freeList.Pop()
		if !ok {
			break
		}
		ids = append(ids, id)
	}

	zeros := make([]byte, t.slotSize-1)
	for _, id := range ids {
		if err := t.sf.WriteAt(zeros, id, 1); err != nil {
			t.requeue(ids)
			return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purgekeep zero")
		}
	}
	t.requeue(ids)
	return nil
}

// Purge compacts the file: tombstoned slots are physically dropped and
// survivors are renumbered 0..M-1 in their original relative order, via a
// sibling temp file and atomic rename, per spec §4.3's Purge procedure.
func (t *TypeDescriptor) Purge() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	tmpPath := t.Path + ".purge.tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge create temp")
	}

	headerBuf, err := t.sf.ReadHeader(t.headerSize)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge read header")
	}
	if _, err := tmp.WriteAt(headerBuf, 0); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge write header")
	}

	slotBuf := make([]byte, t.slotSize)
	var writeOff int64 = t.headerSize
	for id := int64(0); id < t.sf.NumSlots; id++ {
		if err := t.sf.ReadSlot(slotBuf, id); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge read slot")
		}
		if slotBuf[0]&deletedBit != 0 {
			continue
		}
		if _, err := tmp.WriteAt(slotBuf, writeOff); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge write slot")
		}
		writeOff += int64(t.slotSize)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge close temp")
	}
	if err := t.sf.Close(); err != nil {
		os.Remove(tmpPath)
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge close source")
	}
	if err := os.Rename(tmpPath, t.Path); err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge rename")
	}

	reopened, err := os.OpenFile(t.Path, os.O_RDWR, 0644)
	if err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: purge reopen")
	}
	sf, err := slotfile.FromFile(reopened, t.headerSize, t.slotSize)
	if err != nil {
		reopened.Close()
		return err
	}
	t.sf = sf
	t.freeList = NewFreeList()
	return nil
}
