package heap

import "github.com/arcdb/arcdb/internal/block"

// Tombstone byte values, per the slotted-page layout: '+' live, '-'
// deleted, anything else never-used.
const (
	TombstoneLive    byte = '+'
	TombstoneDeleted byte = '-'
)

// SlottedPage views a raw page buffer as a fixed array of equal-size slots,
// each one tombstone byte followed by recordSize-1 bytes of record payload.
type SlottedPage struct {
	buf        []byte
	recordSize int
	capacity   int
}

// NewSlottedPage wraps buf (a full block.PageSize page buffer) for a given
// record size.
func NewSlottedPage(buf []byte, recordSize int) *SlottedPage {
	return &SlottedPage{
		buf:        buf,
		recordSize: recordSize,
		capacity:   block.PageSize / recordSize,
	}
}

// Capacity is the number of slots this page can hold.
func (p *SlottedPage) Capacity() int { return p.capacity }

func (p *SlottedPage) slotOffset(slot int) int {
	return slot * p.recordSize
}

// Tombstone returns slot's tombstone byte.
func (p *SlottedPage) Tombstone(slot int) byte {
	return p.buf[p.slotOffset(slot)]
}

// IsLive reports whether slot currently holds a live record.
func (p *SlottedPage) IsLive(slot int) bool {
	return p.Tombstone(slot) == TombstoneLive
}

// FindFreeSlot returns the first slot whose tombstone is not TombstoneLive,
// or -1 if the page is full.
func (p *SlottedPage) FindFreeSlot() int {
	for s := 0; s < p.capacity; s++ {
		if p.Tombstone(s) != TombstoneLive {
			return s
		}
	}
	return -1
}

// Payload returns the record-bytes region of slot (everything after the
// tombstone byte), sized recordSize-1.
func (p *SlottedPage) Payload(slot int) []byte {
	off := p.slotOffset(slot)
	return p.buf[off+1 : off+p.recordSize]
}

// PutLive writes payload into slot and marks it live.
func (p *SlottedPage) PutLive(slot int, payload []byte) {
	off := p.slotOffset(slot)
	p.buf[off] = TombstoneLive
	copy(p.buf[off+1:off+p.recordSize], payload)
}

// MarkDeleted sets slot's tombstone to TombstoneDeleted, leaving its bytes
// in place (they are never read again until a future PutLive overwrites
// them).
func (p *SlottedPage) MarkDeleted(slot int) {
	p.buf[p.slotOffset(slot)] = TombstoneDeleted
}
