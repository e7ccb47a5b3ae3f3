package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Key   string
	Value int64
}

func (p pair) Values() GenericRecord {
	return GenericRecord{p.Key, p.Value}
}

func TestDistinctKeepsFirstOccurrence(t *testing.T) {
	ds := NewInMemoryDataset("pairs", []pair{{"a", 1}, {"b", 2}, {"a", 1}, {"a", 2}, {"b", 2}})
	got := ds.Distinct()
	assert.Equal(t, []pair{{"a", 1}, {"b", 2}, {"a", 2}}, got.Rows())
	assert.Equal(t, 5, ds.Len(), "source dataset is not modified")
}

func TestDistinctEmpty(t *testing.T) {
	ds := NewInMemoryDataset[pair]("pairs", nil)
	assert.Equal(t, 0, ds.Distinct().Len())
}

func TestFilter(t *testing.T) {
	ds := NewInMemoryDataset("pairs", []pair{{"a", 1}, {"b", 2}, {"c", 3}})
	got := ds.Filter(func(p pair) bool { return p.Value%2 == 1 })
	assert.Equal(t, []pair{{"a", 1}, {"c", 3}}, got.Rows())
	assert.Equal(t, "pairs", got.Name())
}

func TestSelect(t *testing.T) {
	ds := NewInMemoryDataset("pairs", []pair{{"a", 1}, {"b", 2}})
	keys := Select(ds, "keys", func(p pair) string { return p.Key })
	assert.Equal(t, []string{"a", "b"}, keys.Rows())
	assert.Equal(t, "keys", keys.Name())
}

func TestInnerJoin(t *testing.T) {
	type joined struct {
		Left  int64
		Right int64
	}
	left := NewInMemoryDataset("left", []pair{{"a", 1}, {"b", 2}, {"z", 3}, {"a", 4}})
	right := NewInMemoryDataset("right", []pair{{"a", 10}, {"b", 20}, {"a", 11}, {"q", 99}})
	got := InnerJoin(left, right, "joined",
		func(p pair) string { return p.Key },
		func(p pair) string { return p.Key },
		func(l, r pair) joined { return joined{l.Value, r.Value} },
	)
	assert.Equal(t, []joined{{1, 10}, {1, 11}, {2, 20}, {4, 10}, {4, 11}}, got.Rows())
}

func TestInnerJoinIsCaseSensitive(t *testing.T) {
	left := NewInMemoryDataset("left", []pair{{"Song", 1}, {"song ", 2}})
	right := NewInMemoryDataset("right", []pair{{"song", 1}})
	got := InnerJoin(left, right, "joined",
		func(p pair) string { return p.Key },
		func(p pair) string { return p.Key },
		func(l, r pair) pair { return l },
	)
	assert.Equal(t, 0, got.Len())
}

func TestAsTableIterator(t *testing.T) {
	schema := NewSchema(Column{"key", "string"}, Column{"value", "int64"})
	tbl := AsTable(NewInMemoryDataset("pairs", []pair{{"a", 1}, {"b", 2}}), schema)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "pairs", tbl.Name())

	it := tbl.Iterator()
	var records []GenericRecord
	for it.Next() {
		records = append(records, it.Values())
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())
	assert.Equal(t, []GenericRecord{{"a", int64(1)}, {"b", int64(2)}}, records)
}

func TestRecordTable(t *testing.T) {
	schema := NewSchema(Column{"key", "string"})
	tbl := NewRecordTable("keys", schema, []GenericRecord{{"a"}, {nil}})
	it := tbl.Iterator()
	count := 0
	for it.Next() {
		count++
	}
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, tbl.Len())
}
