package typedesc

import (
	"os"

	"github.com/fuziot/fuziotdb"
	"github.com/fuziot/fuziotdb/header"
)

// Upgrade rewrites path in place to match newSchema, per spec §4.6: old
// fields matched by (name, length) to a field in newSchema are copied
// verbatim (no codec decode/encode); fields present only in the old
// header are dropped; fields present only in newSchema are zero-filled.
// Tombstoned slots are dropped entirely — after Upgrade the free-slot
// queue starts empty, rebuilt on the subsequent Register call.
//
// Grounded on the teacher's heap_file compaction pass (heap_file.go's
// "open dest, stream source page by page, rename over source" shape),
// adapted here to reinterpret rather than merely copy each slot's bytes.
func Upgrade(path string, oldFields []header.FieldHeader, newSchema fuziotdb.Schema) error {
	src, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: open source")
	}
	defer src.Close()

	oldSize := slotSizeOf(oldFields)
	oldHeaderSize := header.Size(oldFields)

	newFields := make([]header.FieldHeader, len(newSchema.Fields))
	for i, f := range newSchema.Fields {
		newFields[i] = header.FieldHeader{Name: f.Name, Length: f.Length}
	}
	newHeaderBytes, err := header.Encode(newFields)
	if err != nil {
		return err
	}
	newSlotSize := newSchema.SlotSize()

	tmpPath := path + ".upgrade.tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: create temp")
	}
	if _, err := tmp.WriteAt(newHeaderBytes, 0); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: write new header")
	}

	srcStat, err := src.Stat()
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: stat source")
	}
	numOldSlots := int64(0)
	if srcStat.Size() > int64(oldHeaderSize) {
		numOldSlots = (srcStat.Size() - int64(oldHeaderSize)) / int64(oldSize)
	}

	oldSlot := make([]byte, oldSize)
	var writeOff int64 = int64(len(newHeaderBytes))
	for id := int64(0); id < numOldSlots; id++ {
		readOff := int64(oldHeaderSize) + id*int64(oldSize)
		if _, err := src.ReadAt(oldSlot, readOff); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: read old slot")
		}
		if oldSlot[0]&deletedBit != 0 {
			continue
		}

		newSlot := make([]byte, newSlotSize)
		off := 1
		for _, nf := range newFields {
			oldOff, ok := findMatchingField(oldFields, nf)
			if ok {
				copy(newSlot[off:off+nf.Length], oldSlot[oldOff:oldOff+nf.Length])
			}
			off += nf.Length
		}
		if _, err := tmp.WriteAt(newSlot, writeOff); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: write new slot")
		}
		writeOff += int64(newSlotSize)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: close temp")
	}
	src.Close()
	if err := os.Remove(path); err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: remove source")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fuziotdb.WrapError(fuziotdb.Io, err, "upgrade: rename temp")
	}
	return nil
}

func slotSizeOf(fields []header.FieldHeader) int {
	size := 1
	for _, f := range fields {
		size += f.Length
	}
	return size
}

// findMatchingField returns the payload byte offset (within a slot, after
// the options byte) of the old field matching (name, length), per spec
// §4.6 step 4's "(name, L)" match.
func findMatchingField(oldFields []header.FieldHeader, want header.FieldHeader) (int, bool) {
	off := 1
	for _, f := range oldFields {
		if f.Name == want.Name && f.Length == want.Length {
			return off, true
		}
		off += f.Length
	}
	return 0, false
}
