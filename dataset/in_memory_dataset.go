package dataset

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// InMemoryDataset is an immutable, ordered set of typed rows. Every
// operation returns a new dataset and preserves input order.
type InMemoryDataset[T comparable] struct {
	name string
	data []T
}

func NewInMemoryDataset[T comparable](name string, data []T) InMemoryDataset[T] {
	return InMemoryDataset[T]{name: name, data: data}
}

func (ds InMemoryDataset[T]) Name() string {
	return ds.name
}

func (ds InMemoryDataset[T]) Rows() []T {
	return ds.data
}

func (ds InMemoryDataset[T]) Len() int {
	return len(ds.data)
}

func (ds InMemoryDataset[T]) Rename(name string) InMemoryDataset[T] {
	return InMemoryDataset[T]{name: name, data: ds.data}
}

// Filter keeps the rows for which keep returns true.
func (ds InMemoryDataset[T]) Filter(keep func(T) bool) InMemoryDataset[T] {
	out := make([]T, 0, len(ds.data))
	for _, row := range ds.data {
		if keep(row) {
			out = append(out, row)
		}
	}
	return InMemoryDataset[T]{name: ds.name, data: out}
}

// Distinct removes exact duplicate rows, keeping the first occurrence.
func (ds InMemoryDataset[T]) Distinct() InMemoryDataset[T] {
	seen := mapset.NewThreadUnsafeSetWithSize[T](len(ds.data))
	out := make([]T, 0, len(ds.data))
	for _, row := range ds.data {
		if seen.Add(row) {
			out = append(out, row)
		}
	}
	return InMemoryDataset[T]{name: ds.name, data: out}
}

// Select projects every row of ds into a new row type.
func Select[T, U comparable](ds InMemoryDataset[T], name string, project func(T) U) InMemoryDataset[U] {
	out := make([]U, len(ds.data))
	for i, row := range ds.data {
		out[i] = project(row)
	}
	return InMemoryDataset[U]{name: name, data: out}
}

// InnerJoin emits combine(l, r) for every pair whose keys are equal. Output
// follows left order, then right order within a key. Rows without a match on
// the other side are dropped.
func InnerJoin[L, R, O, K comparable](
	left InMemoryDataset[L],
	right InMemoryDataset[R],
	name string,
	leftKey func(L) K,
	rightKey func(R) K,
	combine func(L, R) O,
) InMemoryDataset[O] {
	index := make(map[K][]R, len(right.data))
	for _, r := range right.data {
		k := rightKey(r)
		index[k] = append(index[k], r)
	}
	out := make([]O, 0, len(left.data))
	for _, l := range left.data {
		for _, r := range index[leftKey(l)] {
			out = append(out, combine(l, r))
		}
	}
	return InMemoryDataset[O]{name: name, data: out}
}

// Table adapts a dataset of rows to the Table interface consumed by the sink.
func AsTable[T interface {
	comparable
	Row
}](ds InMemoryDataset[T], schema Schema) Table {
	return &inMemoryTable[T]{ds: ds, schema: schema}
}

type inMemoryTable[T interface {
	comparable
	Row
}] struct {
	ds     InMemoryDataset[T]
	schema Schema
}

func (tbl *inMemoryTable[T]) Name() string {
	return tbl.ds.name
}

func (tbl *inMemoryTable[T]) Schema() Schema {
	return tbl.schema
}

func (tbl *inMemoryTable[T]) Len() int {
	return len(tbl.ds.data)
}

func (tbl *inMemoryTable[T]) Iterator() Iterator {
	return &InMemoryIterator[T]{data: tbl.ds.data, index: -1}
}

type InMemoryIterator[T Row] struct {
	data  []T
	index int
}

func (it *InMemoryIterator[T]) Next() bool {
	if it.index+1 < len(it.data) {
		it.index++
		return true
	}
	return false
}

func (it *InMemoryIterator[T]) Values() GenericRecord {
	return it.data[it.index].Values()
}

func (it *InMemoryIterator[T]) Err() error {
	return nil
}

func (it *InMemoryIterator[T]) Close() error {
	return nil
}

// NewRecordTable wraps already materialised records, mostly for tests.
func NewRecordTable(name string, schema Schema, records []GenericRecord) Table {
	return &recordTable{name: name, schema: schema, records: records}
}

type recordTable struct {
	name    string
	schema  Schema
	records []GenericRecord
}

func (tbl *recordTable) Name() string   { return tbl.name }
func (tbl *recordTable) Schema() Schema { return tbl.schema }
func (tbl *recordTable) Len() int       { return len(tbl.records) }

func (tbl *recordTable) Iterator() Iterator {
	return &recordIterator{records: tbl.records, index: -1}
}

type recordIterator struct {
	records []GenericRecord
	index   int
}

func (it *recordIterator) Next() bool {
	if it.index+1 < len(it.records) {
		it.index++
		return true
	}
	return false
}

func (it *recordIterator) Values() GenericRecord { return it.records[it.index] }
func (it *recordIterator) Err() error            { return nil }
func (it *recordIterator) Close() error          { return nil }
