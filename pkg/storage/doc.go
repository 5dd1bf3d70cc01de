// Package storage provides the two node.TableStore implementations the
// engine reads uploaded source tables from and writes result tables to:
// FileStore (filesystem, one <dir>/<id>.csv per table) and MemoryStore
// (sync.RWMutex-guarded map), plus the shared CSV codec (csv.go) both use
// for encoding and type-inferring decode.
package storage
