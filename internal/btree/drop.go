package btree

import "github.com/arcdb/arcdb/internal/block"

// Drop shuts the tree down and removes its backing index file.
func (t *Tree) Drop() error {
	if err := t.Shutdown(); err != nil {
		return err
	}
	name := t.file.FileName
	if err := t.file.Close(); err != nil {
		return err
	}
	return block.Destroy(name)
}
