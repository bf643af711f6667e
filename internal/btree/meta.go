// Package btree implements an in-memory B+ tree index over typed Value
// keys, arena-addressed (nodes live in a slice and reference each other by
// index rather than pointer) so the parent/child cycle never needs
// pointer nulling on free and the representation stays trivially
// serialisable to a page file in a future revision.
package btree

import (
	"fmt"

	"github.com/arcdb/arcdb/internal/block"
	"github.com/arcdb/arcdb/internal/bx"
	"github.com/arcdb/arcdb/internal/value"
)

const headerPage = 0

// Tree is an open index handle: the fanout/key-type it was created with,
// plus its in-memory node arena. Like heap.Table, a Tree is an owned value
// returned by Create/Open, never a process-wide singleton — multiple open
// trees are supported.
type Tree struct {
	file    *block.Handle
	keyType value.Type
	fanout  int

	nodes []*node
	free  []int
	root  int

	numEntries int
}

// Create writes a fresh index header and returns an empty tree.
func Create(file *block.Handle, keyType value.Type, fanout int) (*Tree, error) {
	if err := validateFanout(fanout); err != nil {
		return nil, err
	}
	t := &Tree{file: file, keyType: keyType, fanout: fanout, root: noNode}
	if err := t.writeHeader(); err != nil {
		return nil, err
	}
	return t, nil
}

// Open reads back an index header and returns a fresh, empty tree state —
// nodes are in-memory only in this revision, so reopening an index starts
// empty even though the header persists key_type/fanout.
func Open(file *block.Handle) (*Tree, error) {
	buf := make([]byte, block.PageSize)
	if err := file.ReadBlock(headerPage, buf); err != nil {
		return nil, err
	}
	keyType := value.Type(bx.I32(buf[0:4]))
	fanout := int(bx.I32(buf[4:8]))
	if err := validateFanout(fanout); err != nil {
		return nil, fmt.Errorf("btree: open: %w", err)
	}
	return &Tree{file: file, keyType: keyType, fanout: fanout, root: noNode}, nil
}

func (t *Tree) writeHeader() error {
	if err := t.file.EnsureCapacity(1); err != nil {
		return err
	}
	buf := make([]byte, block.PageSize)
	bx.PutI32(buf[0:4], int32(t.keyType))
	bx.PutI32(buf[4:8], int32(t.fanout))
	return t.file.WriteBlock(headerPage, buf)
}

// KeyType returns the index's key type.
func (t *Tree) KeyType() value.Type { return t.keyType }

// Fanout returns the index's configured branching factor.
func (t *Tree) Fanout() int { return t.fanout }

// NumNodes counts live (allocated, not freed) nodes.
func (t *Tree) NumNodes() int {
	n := 0
	for _, nd := range t.nodes {
		if nd != nil {
			n++
		}
	}
	return n
}

// NumEntries counts distinct (key, rid) pairs inserted minus deleted.
func (t *Tree) NumEntries() int { return t.numEntries }

// Shutdown releases every node in the tree, leaving it empty. Matches the
// "nodes are destroyed ... at tree shutdown" lifecycle.
func (t *Tree) Shutdown() error {
	t.nodes = nil
	t.free = nil
	t.root = noNode
	t.numEntries = 0
	return nil
}
