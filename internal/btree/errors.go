package btree

import "errors"

var (
	ErrKeyNotFound = errors.New("btree: KEY_NOT_FOUND")
	// ErrNoMoreEntries is not returned by Cursor.Next (which signals
	// exhaustion with ok=false, matching heap.Scanner), but is kept as a
	// named sentinel for callers that want to compare against it.
	ErrNoMoreEntries = errors.New("btree: NO_MORE_ENTRIES")
)
