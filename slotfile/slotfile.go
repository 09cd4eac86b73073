// Package slotfile provides random-access, fixed-size-slot file I/O: open
// or create a backing file, grow it one slot at a time, and read or write
// any slot by index.
//
// This is grounded directly on the teacher's block_file package
// (github.com/robot-dreams/zdb2/block_file), generalized in two ways:
// block_file's blocks start at file offset 0, while a FuziotDB file opens
// with a schema header before the slot array, so SlotFile carries a
// HeaderSize offset; and block_file's BlockSize is a fixed constant
// (64KiB pages) shared across every table, while a FuziotDB SlotSize is
// computed per registered type from its schema.
package slotfile

import (
	"os"

	"github.com/dropbox/godropbox/errors"
)

// InvalidSlotID is returned by AllocateSlot on failure.
const InvalidSlotID = -1

// SlotFile is a file laid out as `HeaderSize bytes || slot[0] || slot[1] ||
// ...`, where every slot is exactly SlotSize bytes.
type SlotFile struct {
	File       *os.File
	HeaderSize int64
	SlotSize   int
	NumSlots   int64
}

// Open opens an existing file (or creates an empty one) and computes
// NumSlots from its current length and the given header/slot sizes. It
// does not itself validate that (length - headerSize) is a multiple of
// slotSize; callers detect Corruption from that check themselves, since
// only they know which Kind to report.
func Open(path string, headerSize int64, slotSize int) (*SlotFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "slotfile: open")
	}
	sf, err := FromFile(f, headerSize, slotSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	return sf, nil
}

// FromFile wraps an already-open *os.File, computing NumSlots from its
// current length. Used when the caller needed to read the file (to decode
// an existing header) before it could know headerSize/slotSize.
func FromFile(f *os.File, headerSize int64, slotSize int) (*SlotFile, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "slotfile: stat")
	}
	numSlots := int64(0)
	if stat.Size() > headerSize {
		numSlots = (stat.Size() - headerSize) / int64(slotSize)
	}
	return &SlotFile{
		File:       f,
		HeaderSize: headerSize,
		SlotSize:   slotSize,
		NumSlots:   numSlots,
	}, nil
}

// Exists reports whether the file already has a non-empty header, i.e.
// whether this is a pre-existing FuziotDB file rather than a freshly
// created empty one.
func (sf *SlotFile) Exists() (bool, error) {
	stat, err := sf.File.Stat()
	if err != nil {
		return false, errors.Wrap(err, "slotfile: stat")
	}
	return stat.Size() > 0, nil
}

// WriteHeader writes b at the start of the file. Callers must do this
// before any slot I/O on a freshly created file.
func (sf *SlotFile) WriteHeader(b []byte) error {
	_, err := sf.File.WriteAt(b, 0)
	if err != nil {
		return errors.Wrap(err, "slotfile: write header")
	}
	return nil
}

// ReadHeader reads n bytes from the start of the file.
func (sf *SlotFile) ReadHeader(n int64) ([]byte, error) {
	b := make([]byte, n)
	_, err := sf.File.ReadAt(b, 0)
	if err != nil {
		return nil, errors.Wrap(err, "slotfile: read header")
	}
	return b, nil
}

func (sf *SlotFile) offset(slotID int64) int64 {
	return sf.HeaderSize + slotID*int64(sf.SlotSize)
}

// AllocateSlot extends the file by one slot and returns its id, which is
// always the current value of NumSlots (append semantics for growth; the
// caller is responsible for recycling freed ids instead of calling this).
func (sf *SlotFile) AllocateSlot() (int64, error) {
	id := sf.NumSlots
	sf.NumSlots++
	if err := sf.File.Truncate(sf.offset(sf.NumSlots)); err != nil {
		sf.NumSlots--
		return InvalidSlotID, errors.Wrap(err, "slotfile: truncate")
	}
	return id, nil
}

// ReadSlot reads slot slotID into b, which must be exactly SlotSize bytes.
func (sf *SlotFile) ReadSlot(b []byte, slotID int64) error {
	if err := sf.checkSlotID(slotID); err != nil {
		return err
	}
	if len(b) != sf.SlotSize {
		return errors.Newf("slotfile: buffer len %d != slot size %d", len(b), sf.SlotSize)
	}
	_, err := sf.File.ReadAt(b, sf.offset(slotID))
	if err != nil {
		return errors.Wrap(err, "slotfile: read slot")
	}
	return nil
}

// WriteSlot writes b (exactly SlotSize bytes) to slot slotID.
func (sf *SlotFile) WriteSlot(b []byte, slotID int64) error {
	if err := sf.checkSlotID(slotID); err != nil {
		return err
	}
	if len(b) != sf.SlotSize {
		return errors.Newf("slotfile: buffer len %d != slot size %d", len(b), sf.SlotSize)
	}
	_, err := sf.File.WriteAt(b, sf.offset(slotID))
	if err != nil {
		return errors.Wrap(err, "slotfile: write slot")
	}
	return nil
}

// WriteAt writes b at an arbitrary byte offset within slot slotID —
// used to flip just the options byte (Free) without rewriting the whole
// slot.
func (sf *SlotFile) WriteAt(b []byte, slotID int64, offsetInSlot int) error {
	if err := sf.checkSlotID(slotID); err != nil {
		return err
	}
	_, err := sf.File.WriteAt(b, sf.offset(slotID)+int64(offsetInSlot))
	if err != nil {
		return errors.Wrap(err, "slotfile: write at")
	}
	return nil
}

// ReadAt reads len(b) bytes at an arbitrary offset within slot slotID.
func (sf *SlotFile) ReadAt(b []byte, slotID int64, offsetInSlot int) error {
	if err := sf.checkSlotID(slotID); err != nil {
		return err
	}
	_, err := sf.File.ReadAt(b, sf.offset(slotID)+int64(offsetInSlot))
	if err != nil {
		return errors.Wrap(err, "slotfile: read at")
	}
	return nil
}

func (sf *SlotFile) checkSlotID(slotID int64) error {
	if slotID < 0 || slotID >= sf.NumSlots {
		return errors.Newf("slotfile: slotID must be in [0, %d); got %d", sf.NumSlots, slotID)
	}
	return nil
}

// Length returns the current file length in bytes.
func (sf *SlotFile) Length() (int64, error) {
	stat, err := sf.File.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "slotfile: stat")
	}
	return stat.Size(), nil
}

// Close closes the underlying file.
func (sf *SlotFile) Close() error {
	return sf.File.Close()
}
