// Package httpapi is the illustrative HTTP front door: upload a CSV, run
// a workflow against the engine, download an output file, and list the
// node catalog. It is a thin net/http handler set with no business logic
// of its own — every request marshals to/from pkg/engine and pkg/storage.
package httpapi
