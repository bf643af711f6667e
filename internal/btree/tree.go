package btree

import (
	"github.com/arcdb/arcdb/internal/heap"
	"github.com/arcdb/arcdb/internal/value"
)

// descendToLeaf walks from the root to the leaf that would hold key,
// following the invariant that child ci holds keys < s(i+1) and child
// c(i+1) holds keys >= s(i+1): at each internal node we take the first
// child whose following separator is strictly greater than key, or the
// last child if key is >= every separator.
func (t *Tree) descendToLeaf(key value.Value) *node {
	cur := t.nodes[t.root]
	for !cur.isLeaf {
		idx := firstGreater(cur.keys, key)
		cur = t.nodes[cur.children[idx]]
	}
	return cur
}

// leftmostLeaf returns the first leaf in key order, or nil if the tree is
// empty.
func (t *Tree) leftmostLeaf() *node {
	if t.root == noNode {
		return nil
	}
	cur := t.nodes[t.root]
	for !cur.isLeaf {
		cur = t.nodes[cur.children[0]]
	}
	return cur
}

// Find returns the RID stored under key, or ErrKeyNotFound.
func (t *Tree) Find(key value.Value) (heap.RID, error) {
	if t.root == noNode {
		return heap.RID{}, ErrKeyNotFound
	}
	leaf := t.descendToLeaf(key)
	idx := findExact(leaf.keys, key)
	if idx == -1 {
		return heap.RID{}, ErrKeyNotFound
	}
	return leaf.rids[idx], nil
}

// Insert adds (key, rid) to the index, splitting nodes up to the root as
// needed.
func (t *Tree) Insert(key value.Value, id heap.RID) error {
	if t.root == noNode {
		leaf := t.alloc()
		leaf.isLeaf = true
		leaf.keys = []value.Value{key}
		leaf.rids = []heap.RID{id}
		t.root = leaf.id
		t.numEntries++
		return nil
	}

	leaf := t.descendToLeaf(key)
	if err := t.insertIntoLeaf(leaf, key, id); err != nil {
		return err
	}
	t.numEntries++
	return nil
}

// Delete removes key from the index, borrowing or merging nodes as needed
// to maintain minimum occupancy.
func (t *Tree) Delete(key value.Value) error {
	if t.root == noNode {
		return ErrKeyNotFound
	}
	leaf := t.descendToLeaf(key)
	idx := findExact(leaf.keys, key)
	if idx == -1 {
		return ErrKeyNotFound
	}

	leaf.keys = append(leaf.keys[:idx], leaf.keys[idx+1:]...)
	leaf.rids = append(leaf.rids[:idx], leaf.rids[idx+1:]...)
	t.numEntries--

	// If the deleted key was the leaf's smallest, the parent separator
	// pointing at this leaf (if any) is now stale; refresh it to the new
	// smallest key so it stays tight even when no borrow/merge follows.
	if idx == 0 && leaf.id != t.root && len(leaf.keys) > 0 {
		parent := t.nodes[leaf.parent]
		if ci := childIndex(parent, leaf.id); ci > 0 {
			parent.keys[ci-1] = leaf.keys[0]
		}
	}

	t.rebalanceLeaf(leaf)
	return nil
}
