package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/google/uuid"
)

// FileStore is a filesystem-backed TableStore: every table is one
// <dir>/<id>.csv file. The directory is supplied at construction, not
// read from process-global state, so multiple stores can coexist in one
// process without clobbering each other.
type FileStore struct {
	dir string
}

// NewFileStore builds a FileStore rooted at dir. dir is created if absent.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".csv")
}

// Dir returns the filesystem directory this store is rooted at.
func (s *FileStore) Dir() string {
	return s.dir
}

// ReadCSV satisfies node.TableStore.
func (s *FileStore) ReadCSV(id string, opts node.CSVReadOptions) (*table.Table, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		return nil, err
	}
	defer f.Close()
	return decodeCSV(f, opts.Header, opts.Separator)
}

// WriteCSV satisfies node.TableStore, writing tbl under a newly generated id.
func (s *FileStore) WriteCSV(tbl *table.Table) (string, error) {
	id := uuid.New().String()
	f, err := os.Create(s.path(id))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := encodeCSV(f, tbl); err != nil {
		return "", err
	}
	return id, nil
}
