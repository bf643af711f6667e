// Package bufferpool implements the fixed-size page cache: pinning,
// strategy-driven eviction (FIFO/LRU/CLOCK), and write-back of dirty
// frames. It is the layer the record store and B+ tree index both sit on
// top of.
package bufferpool

import (
	"container/list"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arcdb/arcdb/internal/block"
)

const logPrefix = "bufferpool: "

// NoPage is the sentinel page id meaning "no page bound to this frame".
const NoPage = ^uint32(0)

// Strategy selects the eviction policy used when the pool is full.
type Strategy int

const (
	FIFO Strategy = iota
	LRU
	CLOCK
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	case CLOCK:
		return "CLOCK"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

var (
	ErrBufferFull              = errors.New("bufferpool: BUFFER_FULL")
	ErrPageNotFoundInPool      = errors.New("bufferpool: PAGE_NOT_FOUND_IN_BUFFERPOOL")
	ErrPageAlreadyUnpinned     = errors.New("bufferpool: PAGE_ALREADY_UNPINNED")
	ErrPageNotDirty            = errors.New("bufferpool: PAGE_NOT_DIRTY")
	ErrPoolShutdownWhilePinned = errors.New("bufferpool: cannot shut down pool with pinned frames")
)

// Frame holds one cached page plus its bookkeeping, exactly as the data
// model specifies: resident page, dirty flag, pin count, load/last-use
// ticks, and the CLOCK reference bit.
type Frame struct {
	ResidentPage uint32
	Buf          []byte
	Dirty        bool
	PinCount     int
	LoadTime     uint64
	LastUseTime  uint64
	RefBit       bool
}

// Handle is the caller-visible reference to a pinned frame's buffer. It
// borrows the frame's buffer for the lifetime of the pin.
type Handle struct {
	Page     uint32
	Buf      []byte
	frameIdx int
}

// Pool is a fixed-size buffer pool bound to one block.Handle.
type Pool struct {
	file     *block.Handle
	strategy Strategy

	mu        sync.Mutex
	frames    []Frame
	pageTable map[uint32]int

	tick uint64

	// order backs the FIFO and LRU strategies: it holds frame indices in
	// eviction-candidate order (front = next victim). FIFO never reorders
	// on access; LRU moves an element to the back on every hit.
	order   *list.List
	orderEl map[int]*list.Element

	// clockHand is CLOCK's circular sweep cursor.
	clockHand int

	reads  int
	writes int
}

// Init binds the pool to file, allocating N empty frames under the given
// strategy.
func Init(file *block.Handle, n int, strategy Strategy) (*Pool, error) {
	if file == nil {
		return nil, block.ErrFileHandleNotInit
	}
	if n <= 0 {
		return nil, fmt.Errorf("bufferpool: capacity must be positive, got %d", n)
	}
	p := &Pool{
		file:      file,
		strategy:  strategy,
		frames:    make([]Frame, n),
		pageTable: make(map[uint32]int, n),
		order:     list.New(),
		orderEl:   make(map[int]*list.Element, n),
	}
	for i := range p.frames {
		p.frames[i] = Frame{ResidentPage: NoPage}
	}
	slog.Debug(logPrefix+"Init", "capacity", n, "strategy", strategy)
	return p, nil
}

func (p *Pool) nextTick() uint64 {
	p.tick++
	return p.tick
}

// Pin returns a handle whose buffer is page pageID, loading it from disk
// if necessary and evicting a victim frame under the pool's strategy if
// the pool is full.
func (p *Pool) Pin(pageID uint32) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable[pageID]; ok {
		f := &p.frames[idx]
		f.PinCount++
		f.LastUseTime = p.nextTick()
		f.RefBit = true
		if p.strategy == LRU {
			p.touchOrder(idx)
		}
		if p.strategy == CLOCK {
			p.advanceClockPast(idx)
		}
		slog.Debug(logPrefix+"Pin.hit", "page", pageID, "frame", idx, "pin", f.PinCount)
		return &Handle{Page: pageID, Buf: f.Buf, frameIdx: idx}, nil
	}

	freeIdx := -1
	for i := range p.frames {
		if p.frames[i].ResidentPage == NoPage {
			freeIdx = i
			break
		}
	}

	var idx int
	if freeIdx != -1 {
		idx = freeIdx
	} else {
		victim, err := p.pickVictim()
		if err != nil {
			return nil, err
		}
		idx = victim
		if err := p.evict(idx); err != nil {
			return nil, err
		}
	}

	if err := p.load(idx, pageID); err != nil {
		return nil, err
	}

	f := &p.frames[idx]
	slog.Debug(logPrefix+"Pin.load", "page", pageID, "frame", idx)
	return &Handle{Page: pageID, Buf: f.Buf, frameIdx: idx}, nil
}

// load reads pageID into frame idx and sets up its fresh frame state,
// extending the file if pageID lies beyond the current end of file.
func (p *Pool) load(idx int, pageID uint32) error {
	if err := p.file.EnsureCapacity(int(pageID) + 1); err != nil {
		return err
	}
	buf := make([]byte, block.PageSize)
	if err := p.file.ReadBlock(int(pageID), buf); err != nil {
		return err
	}
	p.reads++

	t := p.nextTick()
	p.frames[idx] = Frame{
		ResidentPage: pageID,
		Buf:          buf,
		Dirty:        false,
		PinCount:     1,
		LoadTime:     t,
		LastUseTime:  t,
		RefBit:       true,
	}
	p.pageTable[pageID] = idx

	switch p.strategy {
	case FIFO, LRU:
		p.pushOrder(idx)
	case CLOCK:
		// A frame filled from the free list has never passed under the
		// sweep, so the hand would otherwise never move past it: advance
		// past idx here too, the same way pickVictimClock advances past
		// every frame it examines, so a later re-reference of idx still
		// gets a genuine second chance instead of the hand looping back
		// to it first.
		p.advanceClockPast(idx)
	}
	return nil
}

// advanceClockPast positions the clock hand at idx's successor, so the next
// sweep treats idx as already examined.
func (p *Pool) advanceClockPast(idx int) {
	p.clockHand = (idx + 1) % len(p.frames)
}

// evict writes back frame idx if dirty and removes its page mapping,
// leaving the frame ready for load() to reuse.
func (p *Pool) evict(idx int) error {
	f := &p.frames[idx]
	if f.Dirty {
		if err := p.file.WriteBlock(int(f.ResidentPage), f.Buf); err != nil {
			return err
		}
		p.writes++
		f.Dirty = false
	}
	delete(p.pageTable, f.ResidentPage)
	if el, ok := p.orderEl[idx]; ok {
		p.order.Remove(el)
		delete(p.orderEl, idx)
	}
	f.ResidentPage = NoPage
	f.PinCount = 0
	return nil
}

func (p *Pool) pushOrder(idx int) {
	el := p.order.PushBack(idx)
	p.orderEl[idx] = el
}

func (p *Pool) touchOrder(idx int) {
	if el, ok := p.orderEl[idx]; ok {
		p.order.MoveToBack(el)
	}
}

// pickVictim chooses an unpinned frame to evict under the pool's strategy.
// It leaves page mappings and frame contents alone (evict() handles those
// once the choice is final); the CLOCK sweep does clear RefBits and move the
// clock hand as it goes.
func (p *Pool) pickVictim() (int, error) {
	switch p.strategy {
	case FIFO, LRU:
		for el := p.order.Front(); el != nil; el = el.Next() {
			idx := el.Value.(int)
			if p.frames[idx].PinCount == 0 {
				return idx, nil
			}
		}
		return -1, ErrBufferFull
	case CLOCK:
		return p.pickVictimClock()
	default:
		return -1, fmt.Errorf("bufferpool: unknown strategy %v", p.strategy)
	}
}

// pickVictimClock sweeps frames circularly, evicting the first unpinned
// frame found with RefBit == 0, clearing RefBit on frames it passes over
// with RefBit == 1.
func (p *Pool) pickVictimClock() (int, error) {
	n := len(p.frames)
	for scanned := 0; scanned < 2*n; scanned++ {
		idx := p.clockHand
		p.clockHand = (p.clockHand + 1) % n
		f := &p.frames[idx]
		if f.ResidentPage == NoPage || f.PinCount != 0 {
			continue
		}
		if !f.RefBit {
			return idx, nil
		}
		f.RefBit = false
	}
	return -1, ErrBufferFull
}

// Unpin decrements the pin count of the frame holding h's page.
func (p *Pool) Unpin(h *Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[h.Page]
	if !ok {
		return ErrPageNotFoundInPool
	}
	f := &p.frames[idx]
	if f.PinCount == 0 {
		return ErrPageAlreadyUnpinned
	}
	f.PinCount--
	return nil
}

// MarkDirty marks the frame holding h's page as dirty.
func (p *Pool) MarkDirty(h *Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[h.Page]
	if !ok {
		return ErrPageNotFoundInPool
	}
	p.frames[idx].Dirty = true
	return nil
}

// ForcePage writes the frame back to disk if dirty, even if pinned, and
// clears its dirty flag.
func (p *Pool) ForcePage(h *Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[h.Page]
	if !ok {
		return ErrPageNotFoundInPool
	}
	f := &p.frames[idx]
	if !f.Dirty {
		return ErrPageNotDirty
	}
	if err := p.file.WriteBlock(int(f.ResidentPage), f.Buf); err != nil {
		return err
	}
	p.writes++
	f.Dirty = false
	return nil
}

// FlushAll writes back every dirty, unpinned frame.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushAllLocked()
}

func (p *Pool) flushAllLocked() error {
	for i := range p.frames {
		f := &p.frames[i]
		if f.ResidentPage == NoPage || !f.Dirty || f.PinCount != 0 {
			continue
		}
		if err := p.file.WriteBlock(int(f.ResidentPage), f.Buf); err != nil {
			return err
		}
		p.writes++
		f.Dirty = false
	}
	return nil
}

// Shutdown flushes every dirty frame and releases all frames. It fails if
// any frame is still pinned.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.frames {
		if p.frames[i].PinCount != 0 {
			return ErrPoolShutdownWhilePinned
		}
	}
	if err := p.flushAllLocked(); err != nil {
		return err
	}
	p.frames = nil
	p.pageTable = nil
	return nil
}

// ---- Observers (never mutate state) ----

func (p *Pool) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

func (p *Pool) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

func (p *Pool) FrameContents() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint32, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.ResidentPage
	}
	return out
}

func (p *Pool) DirtyFlags() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bool, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.Dirty
	}
	return out
}

func (p *Pool) PinCounts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.PinCount
	}
	return out
}
