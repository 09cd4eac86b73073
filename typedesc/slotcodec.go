package typedesc

import (
	"github.com/fuziot/fuziotdb"
	"github.com/fuziot/fuziotdb/codec"
)

const deletedBit = byte(1)

// classifyCodecErr resolves a codec error to the Kind that best describes
// it. A wrong-value-type or wrong-path call into a codec is a usage
// problem, not a schema or corruption one, but codec can't import
// fuziotdb's Kind enum back without a cycle (fuziotdb's field.go already
// imports codec), so codec.IsUsageMismatch is the signal carried across
// that boundary instead.
func classifyCodecErr(err error, fallback fuziotdb.Kind) fuziotdb.Kind {
	if codec.IsUsageMismatch(err) {
		return fuziotdb.UsageMismatch
	}
	return fallback
}

// encodeSlot writes a full slot buffer (options byte plus every field's
// payload in schema order) for Push and Set, per spec §4.3. Codecs already
// emit canonical little-endian bytes directly (see package codec); no
// further endian-reversal step runs over their output here.
func (t *TypeDescriptor) encodeSlot(values fuziotdb.Record, deleted bool) ([]byte, error) {
	if len(values) != len(t.Schema.Fields) {
		return nil, fuziotdb.NewError(fuziotdb.InvalidSchema,
			"record has %d values, schema declares %d fields", len(values), len(t.Schema.Fields))
	}
	buf := make([]byte, t.slotSize)
	if deleted {
		buf[0] = deletedBit
	}
	for i, f := range t.Schema.Fields {
		var payload []byte
		var err error
		if f.Codec.Kind() == codec.Fixed {
			payload, err = f.Codec.EncodeFixed(values[i])
		} else {
			payload, err = f.Codec.EncodeFlex(values[i], f.Length)
		}
		if err != nil {
			return nil, fuziotdb.WrapError(classifyCodecErr(err, fuziotdb.InvalidSchema), err, "encode field "+f.Name)
		}
		if len(payload) != f.Length {
			return nil, fuziotdb.NewError(fuziotdb.InvalidSchema,
				"codec %s returned %d bytes, field %q expects %d", f.Codec.Name(), len(payload), f.Name, f.Length)
		}
		copy(buf[t.offsets[i]:t.offsets[i]+f.Length], payload)
	}
	return buf, nil
}

// decodeField decodes one field's payload out of an already-read slot
// buffer (options byte included, at buf[0]).
func (t *TypeDescriptor) decodeField(buf []byte, fieldIndex int) (interface{}, error) {
	f := t.Schema.Fields[fieldIndex]
	off := t.offsets[fieldIndex]
	payload := buf[off : off+f.Length]
	if f.Codec.Kind() == codec.Fixed {
		return f.Codec.DecodeFixed(payload)
	}
	return f.Codec.DecodeFlex(payload)
}

// decodeFull decodes every field of a slot into a Record, in schema order.
func (t *TypeDescriptor) decodeFull(buf []byte) (fuziotdb.Record, error) {
	rec := make(fuziotdb.Record, len(t.Schema.Fields))
	for i := range t.Schema.Fields {
		v, err := t.decodeField(buf, i)
		if err != nil {
			return nil, fuziotdb.WrapError(classifyCodecErr(err, fuziotdb.Corruption), err, "decode field "+t.Schema.Fields[i].Name)
		}
		rec[i] = v
	}
	return rec, nil
}

// resolveProjection maps requested field names to their schema index,
// per spec §4.4's "Projection setup": offset_in_slot starts at 1, and a
// missing name fails with UnknownField.
func (t *TypeDescriptor) resolveProjection(fields []string) ([]int, error) {
	idx := make([]int, len(fields))
	for i, name := range fields {
		pos := t.Schema.IndexOf(name)
		if pos < 0 {
			return nil, fuziotdb.NewError(fuziotdb.UnknownField, "unknown field %q", name)
		}
		idx[i] = pos
	}
	return idx, nil
}

// decodeProjection decodes only the requested fields of a slot into a
// Projection, with the slot id prefixed (spec §4.4's "[slot_id, v_0, v_1,
// …]").
func (t *TypeDescriptor) decodeProjection(buf []byte, slotID fuziotdb.SlotID, fieldIdx []int) (fuziotdb.Projection, error) {
	proj := make(fuziotdb.Projection, 1+len(fieldIdx))
	proj[0] = slotID
	for i, fi := range fieldIdx {
		v, err := t.decodeField(buf, fi)
		if err != nil {
			return nil, fuziotdb.WrapError(classifyCodecErr(err, fuziotdb.Corruption), err, "decode field "+t.Schema.Fields[fi].Name)
		}
		proj[1+i] = v
	}
	return proj, nil
}
