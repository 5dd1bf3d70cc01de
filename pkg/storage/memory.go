package storage

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory, RWMutex-guarded TableStore. Suited to tests
// and to the httpapi demo server, where durability across process
// restarts is not required.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// ReadCSV satisfies node.TableStore.
func (s *MemoryStore) ReadCSV(id string, opts node.CSVReadOptions) (*table.Table, error) {
	s.mu.RLock()
	data, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return decodeCSV(bytes.NewReader(data), opts.Header, opts.Separator)
}

// WriteCSV satisfies node.TableStore. It assigns a fresh uuid to every
// write; MemoryStore never updates an existing id in place.
func (s *MemoryStore) WriteCSV(tbl *table.Table) (string, error) {
	var buf bytes.Buffer
	if err := encodeCSV(&buf, tbl); err != nil {
		return "", err
	}
	id := uuid.New().String()
	s.mu.Lock()
	s.files[id] = buf.Bytes()
	s.mu.Unlock()
	return id, nil
}

// Put seeds the store with raw CSV bytes under id, for tests that need to
// stand up a fixture without going through WriteCSV.
func (s *MemoryStore) Put(id string, data []byte) {
	s.mu.Lock()
	s.files[id] = data
	s.mu.Unlock()
}
