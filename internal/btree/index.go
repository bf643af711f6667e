package btree

import "github.com/arcdb/arcdb/internal/heap"

// Cursor walks every (key, rid) pair in ascending key order by following
// the leaf chain from the leftmost leaf.
type Cursor struct {
	t    *Tree
	leaf *node
	idx  int
}

// ScanOpen positions a cursor at the start of the leaf chain.
func (t *Tree) ScanOpen() *Cursor {
	return &Cursor{t: t, leaf: t.leftmostLeaf(), idx: 0}
}

// Next returns the next RID in key order. ok is false once the chain is
// exhausted.
func (c *Cursor) Next() (heap.RID, bool, error) {
	for c.leaf != nil && c.idx >= len(c.leaf.keys) {
		if c.leaf.next == noNode {
			c.leaf = nil
			break
		}
		c.leaf = c.t.nodes[c.leaf.next]
		c.idx = 0
	}
	if c.leaf == nil {
		return heap.RID{}, false, nil
	}
	id := c.leaf.rids[c.idx]
	c.idx++
	return id, true, nil
}

// Close releases the cursor. The in-memory tree holds no resources beyond
// the cursor struct itself, so this is a no-op kept for symmetry with
// ScanOpen/Next.
func (c *Cursor) Close() {}
