// Package typedesc implements one record type's runtime state and
// lifecycle: registration against an on-disk file (spec §4.3), Push/Set/
// Free/Purge/PurgeKeep, and scans. It is grounded on the teacher's
// heap_file package (open/create, insert/delete/get) generalized from
// variable-length slotted pages to the spec's flat fixed-size-slot file,
// and on heap_file/scan.go's slot-iteration loop, reused here both for
// the startup free-queue rebuild and for synchronous scans.
package typedesc

import (
	"os"

	"github.com/fuziot/fuziotdb"
	"github.com/fuziot/fuziotdb/codec"
	"github.com/fuziot/fuziotdb/header"
	"github.com/fuziot/fuziotdb/rwlock"
	"github.com/fuziot/fuziotdb/slotfile"
)

// TypeDescriptor is one record type's file, schema, free list, and lock.
type TypeDescriptor struct {
	Name   string
	Path   string
	Schema fuziotdb.Schema

	headerSize int64
	slotSize   int
	offsets    []int // byte offset of each field from the start of a slot (the options byte is offset 0)

	sf       *slotfile.SlotFile
	lock     *rwlock.RWLock
	freeList *FreeList

	finalized bool
}

// Builder accumulates fields before a type is registered, refusing
// further additions once registration finalizes the descriptor (spec
// §4.3 step 6: "further Add is forbidden").
type Builder struct {
	fields    []fuziotdb.Field
	finalized bool
}

// NewBuilder starts an empty schema builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add declares one field. declaredLength is an element count for flexible
// codecs (multiplied by the codec's BytesPerElement) and is ignored for
// fixed codecs, per spec §4.3's registration contract.
func (b *Builder) Add(name string, c codec.Codec, declaredLength int) error {
	if b.finalized {
		return fuziotdb.NewError(fuziotdb.InvalidSchema, "builder %v already finalized by Register", b)
	}
	f, err := fuziotdb.NewField(name, c, declaredLength)
	if err != nil {
		return err
	}
	b.fields = append(b.fields, f)
	return nil
}

// Schema snapshots the fields declared so far, in declaration order. The
// order only matters for a brand-new file; an existing file's on-disk
// order is authoritative (spec §4.3 step 4).
func (b *Builder) Schema() fuziotdb.Schema {
	fields := make([]fuziotdb.Field, len(b.fields))
	copy(fields, b.fields)
	return fuziotdb.Schema{Fields: fields}
}

// Register implements the spec §4.3 registration contract: validate,
// create-or-open, reconcile against the on-disk header (optionally via
// Upgrade), rebuild the free-slot queue, and finalize. typeName labels
// the resulting descriptor (e.g. for log messages); it plays no role in
// the on-disk format, which only ever sees path.
func Register(builder *Builder, typeName, path string, schema fuziotdb.Schema, upgrade bool) (*TypeDescriptor, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: open")
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: stat")
	}

	var onDiskFields []header.FieldHeader
	if stat.Size() == 0 {
		onDiskFields = schemaToFieldHeaders(schema)
		headerBytes, err := header.Encode(onDiskFields)
		if err != nil {
			f.Close()
			return nil, err
		}
		if _, err := f.WriteAt(headerBytes, 0); err != nil {
			f.Close()
			return nil, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: write header")
		}
	} else {
		existing, _, err := header.DecodeFromReaderAt(f)
		if err != nil {
			f.Close()
			return nil, fuziotdb.WrapError(fuziotdb.Corruption, err, "typedesc: decode header")
		}
		declaredOnDisk := fieldHeadersToSchema(existing)
		if fuziotdb.SameFieldSet(schema, declaredOnDisk) {
			onDiskFields = existing
		} else if !upgrade {
			f.Close()
			return nil, fuziotdb.NewError(fuziotdb.HeaderMismatch,
				"typedesc: on-disk schema for %q does not match declared schema", path)
		} else {
			f.Close()
			if err := Upgrade(path, existing, schema); err != nil {
				return nil, err
			}
			f, err = os.OpenFile(path, os.O_RDWR, 0644)
			if err != nil {
				return nil, fuziotdb.WrapError(fuziotdb.Io, err, "typedesc: reopen after upgrade")
			}
			onDiskFields = schemaToFieldHeaders(schema)
		}
	}

	orderedSchema, err := reconcileOrder(schema, onDiskFields)
	if err != nil {
		f.Close()
		return nil, err
	}

	headerSize := int64(header.Size(onDiskFields))
	slotSize := orderedSchema.SlotSize()

	sf, err := slotfile.FromFile(f, headerSize, slotSize)
	if err != nil {
		f.Close()
		return nil, err
	}

	length, err := sf.Length()
	if err != nil {
		return nil, err
	}
	if (length-headerSize)%int64(slotSize) != 0 {
		return nil, fuziotdb.NewError(fuziotdb.Corruption,
			"typedesc: file length %d inconsistent with header size %d and slot size %d", length, headerSize, slotSize)
	}

	td := &TypeDescriptor{
		Name:       typeName,
		Path:       path,
		Schema:     orderedSchema,
		headerSize: headerSize,
		slotSize:   slotSize,
		offsets:    fieldOffsets(orderedSchema),
		sf:         sf,
		lock:       rwlock.New(),
		freeList:   NewFreeList(),
	}

	if err := td.rebuildFreeList(); err != nil {
		return nil, err
	}

	td.finalized = true
	if builder != nil {
		builder.finalized = true
	}
	return td, nil
}

// reconcileOrder reorders schema's fields to match the on-disk order,
// resolving each on-disk (name, length) pair back to the declared codec.
// This is what makes the on-disk order the single source of truth for
// slot layout (spec §4.3 step 4).
func reconcileOrder(schema fuziotdb.Schema, onDisk []header.FieldHeader) (fuziotdb.Schema, error) {
	byName := make(map[string]fuziotdb.Field, len(schema.Fields))
	for _, f := range schema.Fields {
		byName[f.Name] = f
	}
	ordered := make([]fuziotdb.Field, len(onDisk))
	for i, fh := range onDisk {
		f, ok := byName[fh.Name]
		if !ok {
			return fuziotdb.Schema{}, fuziotdb.NewError(fuziotdb.HeaderMismatch,
				"typedesc: on-disk field %q has no declared counterpart", fh.Name)
		}
		f.Length = fh.Length
		ordered[i] = f
	}
	return fuziotdb.Schema{Fields: ordered}, nil
}

func schemaToFieldHeaders(schema fuziotdb.Schema) []header.FieldHeader {
	out := make([]header.FieldHeader, len(schema.Fields))
	for i, f := range schema.Fields {
		out[i] = header.FieldHeader{Name: f.Name, Length: f.Length}
	}
	return out
}

func fieldHeadersToSchema(fields []header.FieldHeader) fuziotdb.Schema {
	out := make([]fuziotdb.Field, len(fields))
	for i, f := range fields {
		out[i] = fuziotdb.Field{Name: f.Name, Length: f.Length}
	}
	return fuziotdb.Schema{Fields: out}
}

func fieldOffsets(schema fuziotdb.Schema) []int {
	offsets := make([]int, len(schema.Fields))
	off := 1
	for i, f := range schema.Fields {
		offsets[i] = off
		off += f.Length
	}
	return offsets
}

// RLock acquires the type's read lock. Exported for package db, which
// holds it for the whole of a parallel scan dispatch rather than once per
// worker (see scan.go's ScanRange family).
func (t *TypeDescriptor) RLock() {
	t.lock.RLock()
}

// RUnlock releases the type's read lock.
func (t *TypeDescriptor) RUnlock() {
	t.lock.RUnlock()
}

// InstanceCount returns the number of slots currently allocated
// (including tombstoned ones), used by the database facade to compute a
// parallel scan's partitioning.
func (t *TypeDescriptor) InstanceCount() int64 {
	return t.sf.NumSlots
}

// SlotSize returns the fixed on-disk byte size of one slot (options byte
// included).
func (t *TypeDescriptor) SlotSize() int {
	return t.slotSize
}

// Close closes the underlying file.
func (t *TypeDescriptor) Close() error {
	return t.sf.Close()
}
