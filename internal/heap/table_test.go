package heap_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcdb/arcdb/internal/block"
	"github.com/arcdb/arcdb/internal/bufferpool"
	"github.com/arcdb/arcdb/internal/heap"
	"github.com/arcdb/arcdb/internal/predicate"
	"github.com/arcdb/arcdb/internal/record"
	"github.com/arcdb/arcdb/internal/value"
)

func schemaAB(t *testing.T) record.Schema {
	t.Helper()
	s, err := record.NewSchema([]record.Attribute{
		{Name: "a", Type: value.Int},
		{Name: "b", Type: value.String, Length: 4},
	}, []int{0})
	require.NoError(t, err)
	return s
}

func newTable(t *testing.T) *heap.Table {
	t.Helper()
	f, err := block.Create(filepath.Join(t.TempDir(), "t.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	pool, err := bufferpool.Init(f, 8, bufferpool.FIFO)
	require.NoError(t, err)

	tbl, err := heap.CreateTable(pool, schemaAB(t))
	require.NoError(t, err)
	return tbl
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	tbl := newTable(t)
	r, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(7), value.NewStringS("abcd")})
	require.NoError(t, err)

	rid, err := tbl.InsertRecord(r)
	require.NoError(t, err)
	require.Equal(t, uint32(1), rid.Page)
	require.Equal(t, uint16(0), rid.Slot)

	got, err := tbl.GetRecord(rid)
	require.NoError(t, err)
	require.Equal(t, int32(7), got.Values[0].Int())
	require.Equal(t, "abcd", got.Values[1].String())
	require.Equal(t, uint32(1), tbl.TupleCount())
}

func TestDeleteThenGetFails(t *testing.T) {
	tbl := newTable(t)
	r, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(1), value.NewStringS("xy")})
	require.NoError(t, err)
	rid, err := tbl.InsertRecord(r)
	require.NoError(t, err)

	require.NoError(t, tbl.DeleteRecord(rid))
	require.Equal(t, uint32(0), tbl.TupleCount())

	_, err = tbl.GetRecord(rid)
	require.ErrorIs(t, err, heap.ErrNoTupleWithGivenRID)
}

func TestUpdateRecordOverwritesInPlace(t *testing.T) {
	tbl := newTable(t)
	r, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(1), value.NewStringS("xy")})
	require.NoError(t, err)
	rid, err := tbl.InsertRecord(r)
	require.NoError(t, err)

	r2, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(99), value.NewStringS("zz")})
	require.NoError(t, err)
	require.NoError(t, tbl.UpdateRecord(rid, r2))

	got, err := tbl.GetRecord(rid)
	require.NoError(t, err)
	require.Equal(t, int32(99), got.Values[0].Int())
}

func TestInsertReusesDeletedSlot(t *testing.T) {
	tbl := newTable(t)
	r, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(1), value.NewStringS("aa")})
	require.NoError(t, err)
	rid1, err := tbl.InsertRecord(r)
	require.NoError(t, err)
	require.NoError(t, tbl.DeleteRecord(rid1))

	r2, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(2), value.NewStringS("bb")})
	require.NoError(t, err)
	rid2, err := tbl.InsertRecord(r2)
	require.NoError(t, err)
	require.Equal(t, rid1, rid2)
}

func TestScanYieldsLiveRecordsInOrder(t *testing.T) {
	tbl := newTable(t)
	var rids []heap.RID
	for i := int32(0); i < 5; i++ {
		r, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(i), value.NewStringS("xx")})
		require.NoError(t, err)
		rid, err := tbl.InsertRecord(r)
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	require.NoError(t, tbl.DeleteRecord(rids[2]))

	sc := tbl.Scan(predicate.True)
	var seen []int32
	for {
		_, rec, ok, err := sc.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen = append(seen, rec.Values[0].Int())
	}
	require.Equal(t, []int32{0, 1, 3, 4}, seen)
}

func TestScanAppliesPredicate(t *testing.T) {
	tbl := newTable(t)
	for i := int32(0); i < 4; i++ {
		r, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(i), value.NewStringS("xx")})
		require.NoError(t, err)
		_, err = tbl.InsertRecord(r)
		require.NoError(t, err)
	}

	sc := tbl.Scan(predicate.Equals(0, value.NewInt(2)))
	_, rec, ok, err := sc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(2), rec.Values[0].Int())

	_, _, ok, err = sc.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenTableReconstructsSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.db")
	f, err := block.Create(path)
	require.NoError(t, err)

	pool, err := bufferpool.Init(f, 8, bufferpool.FIFO)
	require.NoError(t, err)
	tbl, err := heap.CreateTable(pool, schemaAB(t))
	require.NoError(t, err)
	r, err := record.NewRecord(tbl.Schema(), []value.Value{value.NewInt(3), value.NewStringS("hi")})
	require.NoError(t, err)
	_, err = tbl.InsertRecord(r)
	require.NoError(t, err)
	require.NoError(t, pool.FlushAll())
	require.NoError(t, f.Close())

	f2, err := block.Open(path)
	require.NoError(t, err)
	defer f2.Close()
	pool2, err := bufferpool.Init(f2, 8, bufferpool.FIFO)
	require.NoError(t, err)
	tbl2, err := heap.OpenTable(pool2)
	require.NoError(t, err)

	require.Equal(t, uint32(1), tbl2.TupleCount())
	require.Len(t, tbl2.Schema().Attrs, 2)
	require.Equal(t, "a", tbl2.Schema().Attrs[0].Name)
}
