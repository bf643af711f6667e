package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcdb/arcdb/internal/block"
	"github.com/arcdb/arcdb/internal/heap"
)

func TestSlottedPageCapacity(t *testing.T) {
	buf := make([]byte, block.PageSize)
	sp := heap.NewSlottedPage(buf, 9)
	require.Equal(t, block.PageSize/9, sp.Capacity())
}

func TestFindFreeSlotOnFreshPage(t *testing.T) {
	buf := make([]byte, block.PageSize)
	sp := heap.NewSlottedPage(buf, 9)
	require.Equal(t, 0, sp.FindFreeSlot())
}

func TestPutLiveThenMarkDeletedFreesSlot(t *testing.T) {
	buf := make([]byte, block.PageSize)
	sp := heap.NewSlottedPage(buf, 9)

	sp.PutLive(0, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.True(t, sp.IsLive(0))
	require.Equal(t, 1, sp.FindFreeSlot())

	sp.MarkDeleted(0)
	require.False(t, sp.IsLive(0))
	require.Equal(t, heap.TombstoneDeleted, sp.Tombstone(0))
	require.Equal(t, 0, sp.FindFreeSlot())
}

func TestFullPageHasNoFreeSlot(t *testing.T) {
	buf := make([]byte, block.PageSize)
	sp := heap.NewSlottedPage(buf, 9)
	payload := make([]byte, 8)
	for s := 0; s < sp.Capacity(); s++ {
		sp.PutLive(s, payload)
	}
	require.Equal(t, -1, sp.FindFreeSlot())
}
