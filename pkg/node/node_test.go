package node_test

import (
	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/table"
)

// fakeStore is a minimal in-memory node.TableStore for node-level tests;
// pkg/storage provides the real implementations.
type fakeStore struct {
	tables map[string]*table.Table
	nextID int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: make(map[string]*table.Table)}
}

func (s *fakeStore) put(id string, tbl *table.Table) {
	s.tables[id] = tbl
}

func (s *fakeStore) ReadCSV(id string, _ node.CSVReadOptions) (*table.Table, error) {
	tbl, ok := s.tables[id]
	if !ok {
		return nil, node.ErrFileNotFound
	}
	return tbl, nil
}

func (s *fakeStore) WriteCSV(tbl *table.Table) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.nextID++
	id := "out-" + string(rune('0'+s.nextID))
	s.tables[id] = tbl
	return id, nil
}

func ageTable() *table.Table {
	tbl, _ := table.New([]table.Column{
		{Name: "id", Kind: table.KindInt64, Ints: []int64{1, 2, 3}, Nulls: []bool{false, false, false}},
		{Name: "age", Kind: table.KindInt64, Ints: []int64{25, 35, 45}, Nulls: []bool{false, false, false}},
	})
	return tbl
}
