package heap

import (
	"fmt"
	"log/slog"

	"github.com/arcdb/arcdb/internal/bufferpool"
	"github.com/arcdb/arcdb/internal/bx"
	"github.com/arcdb/arcdb/internal/predicate"
	"github.com/arcdb/arcdb/internal/record"
	"github.com/arcdb/arcdb/internal/value"
)

const headerPage = 0

// attrHeaderSize is one serialised attribute entry: name[15] + type(int32) +
// length(int32).
const attrHeaderSize = record.MaxAttrName + 4 + 4

// Table is an open heap file: a schema plus the buffer pool it reads and
// writes pages through. Table instances are owned values returned by
// CreateTable/OpenTable, never process-wide singletons, so multiple tables
// may be open over distinct pools simultaneously.
type Table struct {
	pool         *bufferpool.Pool
	schema       record.Schema
	recordSize   int
	tupleCount   uint32
	nextFreePage uint32
}

// CreateTable allocates page 0 of a fresh heap file through pool and writes
// its header.
func CreateTable(pool *bufferpool.Pool, schema record.Schema) (*Table, error) {
	t := &Table{
		pool:         pool,
		schema:       schema,
		recordSize:   schema.RecordSize(),
		tupleCount:   0,
		nextFreePage: 1,
	}
	if err := t.writeHeader(); err != nil {
		return nil, err
	}
	slog.Debug("heap: CreateTable", "attrs", len(schema.Attrs), "recordSize", t.recordSize)
	return t, nil
}

// OpenTable reconstructs a Table by reading page 0's header back out of
// pool.
func OpenTable(pool *bufferpool.Pool) (*Table, error) {
	h, err := pool.Pin(headerPage)
	if err != nil {
		return nil, err
	}
	defer pool.Unpin(h)

	schema, tupleCount, nextFreePage, err := decodeHeader(h.Buf)
	if err != nil {
		return nil, err
	}
	return &Table{
		pool:         pool,
		schema:       schema,
		recordSize:   schema.RecordSize(),
		tupleCount:   tupleCount,
		nextFreePage: nextFreePage,
	}, nil
}

func (t *Table) Schema() record.Schema { return t.schema }
func (t *Table) TupleCount() uint32    { return t.tupleCount }

func (t *Table) writeHeader() error {
	h, err := t.pool.Pin(headerPage)
	if err != nil {
		return err
	}
	defer t.pool.Unpin(h)

	encodeHeader(h.Buf, t.schema, t.tupleCount, t.nextFreePage)
	return t.pool.MarkDirty(h)
}

func encodeHeader(buf []byte, s record.Schema, tupleCount, nextFreePage uint32) {
	bx.PutU32(buf[0:4], tupleCount)
	bx.PutU32(buf[4:8], nextFreePage)
	bx.PutU32(buf[8:12], uint32(len(s.Attrs)))
	bx.PutU32(buf[12:16], uint32(len(s.KeyIdxs)))

	off := 16
	for _, a := range s.Attrs {
		nameBuf := buf[off : off+record.MaxAttrName]
		for i := range nameBuf {
			nameBuf[i] = 0
		}
		copy(nameBuf, a.Name)
		bx.PutI32(buf[off+record.MaxAttrName:off+record.MaxAttrName+4], int32(a.Type))
		bx.PutI32(buf[off+record.MaxAttrName+4:off+attrHeaderSize], int32(a.Length))
		off += attrHeaderSize
	}
	for _, k := range s.KeyIdxs {
		bx.PutI32(buf[off:off+4], int32(k))
		off += 4
	}
}

func decodeHeader(buf []byte) (record.Schema, uint32, uint32, error) {
	tupleCount := bx.U32(buf[0:4])
	nextFreePage := bx.U32(buf[4:8])
	numAttrs := int(bx.U32(buf[8:12]))
	keySize := int(bx.U32(buf[12:16]))

	off := 16
	attrs := make([]record.Attribute, numAttrs)
	for i := 0; i < numAttrs; i++ {
		nameBuf := buf[off : off+record.MaxAttrName]
		end := record.MaxAttrName
		for end > 0 && nameBuf[end-1] == 0 {
			end--
		}
		name := string(nameBuf[:end])
		typ := value.Type(bx.I32(buf[off+record.MaxAttrName : off+record.MaxAttrName+4]))
		length := int(bx.I32(buf[off+record.MaxAttrName+4 : off+attrHeaderSize]))
		attrs[i] = record.Attribute{Name: name, Type: typ, Length: length}
		off += attrHeaderSize
	}
	keyIdxs := make([]int, keySize)
	for i := 0; i < keySize; i++ {
		keyIdxs[i] = int(bx.I32(buf[off : off+4]))
		off += 4
	}

	s, err := record.NewSchema(attrs, keyIdxs)
	if err != nil {
		return record.Schema{}, 0, 0, fmt.Errorf("heap: decode header: %w", err)
	}
	return s, tupleCount, nextFreePage, nil
}

// InsertRecord writes r into the first free slot reachable from the cached
// next-free-page hint, growing the file as needed.
func (t *Table) InsertRecord(r record.Record) (RID, error) {
	payload := make([]byte, t.recordSize-record.TombstoneSize)
	if err := t.schema.Encode(r, payload); err != nil {
		return RID{}, err
	}

	page := t.nextFreePage
	for {
		h, err := t.pool.Pin(page)
		if err != nil {
			return RID{}, err
		}
		sp := NewSlottedPage(h.Buf, t.recordSize)
		slot := sp.FindFreeSlot()
		if slot == -1 {
			if err := t.pool.Unpin(h); err != nil {
				return RID{}, err
			}
			page++
			continue
		}

		sp.PutLive(slot, payload)
		if err := t.pool.MarkDirty(h); err != nil {
			return RID{}, err
		}
		if err := t.pool.Unpin(h); err != nil {
			return RID{}, err
		}

		t.tupleCount++
		t.nextFreePage = page
		if err := t.writeHeader(); err != nil {
			return RID{}, err
		}
		return RID{Page: page, Slot: uint16(slot)}, nil
	}
}

// DeleteRecord tombstones rid's slot and updates the next-free-page hint
// (not an invariant, just a placement optimisation).
func (t *Table) DeleteRecord(rid RID) error {
	h, err := t.pool.Pin(rid.Page)
	if err != nil {
		return err
	}
	sp := NewSlottedPage(h.Buf, t.recordSize)
	if !sp.IsLive(int(rid.Slot)) {
		_ = t.pool.Unpin(h)
		return ErrNoTupleWithGivenRID
	}
	sp.MarkDeleted(int(rid.Slot))
	if err := t.pool.MarkDirty(h); err != nil {
		return err
	}
	if err := t.pool.Unpin(h); err != nil {
		return err
	}

	t.tupleCount--
	t.nextFreePage = rid.Page
	return t.writeHeader()
}

// UpdateRecord overwrites rid's record bytes in place without touching its
// tombstone.
func (t *Table) UpdateRecord(rid RID, r record.Record) error {
	h, err := t.pool.Pin(rid.Page)
	if err != nil {
		return err
	}
	sp := NewSlottedPage(h.Buf, t.recordSize)
	if !sp.IsLive(int(rid.Slot)) {
		_ = t.pool.Unpin(h)
		return ErrNoTupleWithGivenRID
	}
	if err := t.schema.Encode(r, sp.Payload(int(rid.Slot))); err != nil {
		_ = t.pool.Unpin(h)
		return err
	}
	if err := t.pool.MarkDirty(h); err != nil {
		return err
	}
	return t.pool.Unpin(h)
}

// GetRecord reads rid's current record, failing ErrNoTupleWithGivenRID if
// its tombstone is not live.
func (t *Table) GetRecord(rid RID) (record.Record, error) {
	h, err := t.pool.Pin(rid.Page)
	if err != nil {
		return record.Record{}, err
	}
	defer t.pool.Unpin(h)

	sp := NewSlottedPage(h.Buf, t.recordSize)
	if !sp.IsLive(int(rid.Slot)) {
		return record.Record{}, ErrNoTupleWithGivenRID
	}
	return t.schema.Decode(sp.Payload(int(rid.Slot)))
}

// Scanner is the stateful cursor walking pages 1.. and, within each, slots
// 0..capacity-1, pinning a page once at its slot-0 visit and unpinning when
// that page's slots are exhausted.
type Scanner struct {
	t          *Table
	pred       predicate.Predicate
	page       uint32
	slot       int
	tuplesSeen uint32

	curHandle *bufferpool.Handle
	curPage   *SlottedPage
}

// Scan opens a scanner applying pred over every live record.
func (t *Table) Scan(pred predicate.Predicate) *Scanner {
	return &Scanner{t: t, pred: pred, page: 1, slot: 0}
}

// Next advances the scanner, returning the next record matching the
// predicate. ok is false once the table is exhausted (ErrNoMoreTuples is
// not itself an error here — callers check ok the way range loops do).
func (s *Scanner) Next() (RID, record.Record, bool, error) {
	for {
		if s.tuplesSeen >= s.t.tupleCount {
			s.closeCurrent()
			return RID{}, record.Record{}, false, nil
		}

		if s.curHandle == nil {
			h, err := s.t.pool.Pin(s.page)
			if err != nil {
				return RID{}, record.Record{}, false, err
			}
			s.curHandle = h
			s.curPage = NewSlottedPage(h.Buf, s.t.recordSize)
			s.slot = 0
		}

		if s.slot >= s.curPage.Capacity() {
			s.closeCurrent()
			s.page++
			continue
		}

		slot := s.slot
		s.slot++

		if !s.curPage.IsLive(slot) {
			continue
		}
		s.tuplesSeen++

		rec, err := s.t.schema.Decode(s.curPage.Payload(slot))
		if err != nil {
			return RID{}, record.Record{}, false, err
		}
		rid := RID{Page: s.page, Slot: uint16(slot)}
		if s.pred(s.t.schema, rec) {
			return rid, rec, true, nil
		}
	}
}

func (s *Scanner) closeCurrent() {
	if s.curHandle != nil {
		_ = s.t.pool.Unpin(s.curHandle)
		s.curHandle = nil
		s.curPage = nil
	}
}

// Close releases any page the scanner still holds pinned. Safe to call
// after Next has already returned ok=false.
func (s *Scanner) Close() {
	s.closeCurrent()
}
