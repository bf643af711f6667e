// Package record defines the schema and fixed-length attribute codec shared
// by the record store and the table-file header. A schema fully determines
// physical record layout: one tombstone byte followed by each attribute's
// bytes in declaration order.
package record

import (
	"fmt"

	"github.com/arcdb/arcdb/internal/value"
)

// MaxAttrName is the fixed on-disk width of an attribute name, matching the
// table-header layout's `name[15 bytes, NUL-padded]` field.
const MaxAttrName = 15

// TombstoneSize is the one leading byte every slot carries.
const TombstoneSize = 1

// Attribute is one column: name, type tag, and byte length (meaningful only
// for value.String; fixed types ignore it).
type Attribute struct {
	Name   string
	Type   value.Type
	Length int
}

// Size returns the attribute's on-page footprint.
func (a Attribute) Size() int {
	return value.Size(a.Type, a.Length)
}

// Schema is an ordered list of attributes plus the indices that form the
// table's key (Key concatenates these, in order).
type Schema struct {
	Attrs   []Attribute
	KeyIdxs []int
}

// NewSchema validates attrs/keyIdxs and returns a Schema.
func NewSchema(attrs []Attribute, keyIdxs []int) (Schema, error) {
	if len(attrs) == 0 {
		return Schema{}, fmt.Errorf("record: schema needs at least one attribute")
	}
	for _, a := range attrs {
		if len(a.Name) > MaxAttrName {
			return Schema{}, fmt.Errorf("record: attribute name %q exceeds %d bytes", a.Name, MaxAttrName)
		}
		if a.Type == value.String && a.Length <= 0 {
			return Schema{}, fmt.Errorf("record: STRING attribute %q needs a positive length", a.Name)
		}
	}
	for _, i := range keyIdxs {
		if i < 0 || i >= len(attrs) {
			return Schema{}, fmt.Errorf("record: key index %d out of range", i)
		}
	}
	return Schema{Attrs: attrs, KeyIdxs: keyIdxs}, nil
}

// RecordSize is the full physical slot size: tombstone plus every attribute.
func (s Schema) RecordSize() int {
	size := TombstoneSize
	for _, a := range s.Attrs {
		size += a.Size()
	}
	return size
}

// AttrOffset returns attribute i's byte offset within a record, counting
// from byte 0 (the tombstone occupies offset 0, so every attribute offset
// is at least 1).
func (s Schema) AttrOffset(i int) int {
	off := TombstoneSize
	for j := 0; j < i; j++ {
		off += s.Attrs[j].Size()
	}
	return off
}

// Record is one fixed-length tuple: one Value per schema attribute, in
// declaration order.
type Record struct {
	Values []value.Value
}

// NewRecord validates vs against schema's attribute types/lengths.
func NewRecord(s Schema, vs []value.Value) (Record, error) {
	if len(vs) != len(s.Attrs) {
		return Record{}, fmt.Errorf("record: expected %d values, got %d", len(s.Attrs), len(vs))
	}
	for i, v := range vs {
		a := s.Attrs[i]
		if v.Tag != a.Type {
			return Record{}, fmt.Errorf("record: attribute %q expects %s, got %s", a.Name, a.Type, v.Tag)
		}
		if a.Type == value.String && len(v.Bytes()) > a.Length {
			return Record{}, fmt.Errorf("record: attribute %q value exceeds length %d", a.Name, a.Length)
		}
	}
	return Record{Values: vs}, nil
}

// Encode writes the record's attribute bytes (not the tombstone) into dst,
// which must be exactly RecordSize()-TombstoneSize bytes.
func (s Schema) Encode(r Record, dst []byte) error {
	want := s.RecordSize() - TombstoneSize
	if len(dst) != want {
		return fmt.Errorf("record: dst must be exactly %d bytes, got %d", want, len(dst))
	}
	for i, a := range s.Attrs {
		off := s.AttrOffset(i) - TombstoneSize
		size := a.Size()
		if err := value.Encode(r.Values[i], a.Length, dst[off:off+size]); err != nil {
			return fmt.Errorf("record: encode attribute %q: %w", a.Name, err)
		}
	}
	return nil
}

// Decode reads a Record's attribute bytes back out of src (which, like
// Encode's dst, excludes the tombstone byte).
func (s Schema) Decode(src []byte) (Record, error) {
	want := s.RecordSize() - TombstoneSize
	if len(src) != want {
		return Record{}, fmt.Errorf("record: src must be exactly %d bytes, got %d", want, len(src))
	}
	vs := make([]value.Value, len(s.Attrs))
	for i, a := range s.Attrs {
		off := s.AttrOffset(i) - TombstoneSize
		size := a.Size()
		v, err := value.Decode(a.Type, a.Length, src[off:off+size])
		if err != nil {
			return Record{}, fmt.Errorf("record: decode attribute %q: %w", a.Name, err)
		}
		vs[i] = v
	}
	return Record{Values: vs}, nil
}

// Key concatenates the schema's key attributes' SortKeys into a single
// comparable byte string. The B+ tree index does not consume this form: it
// keys on a single value.Value.
func (s Schema) Key(r Record) []byte {
	var out []byte
	for _, i := range s.KeyIdxs {
		out = append(out, r.Values[i].SortKey()...)
	}
	return out
}
