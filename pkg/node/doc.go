// Package node implements the eight registered workflow node kinds —
// ReadCSV, Filter, Select, Sort, Formula, Join, Aggregate, Output — behind
// the Node contract the Executor drives, and the Registry that builds a
// Node from a workflow document's (type, config) pair.
//
// Each node's config is parsed and validated once, at construction, into
// a small unexported struct; a config error is captured as a "failed
// node" whose Execute always reports that failure, rather than the
// untyped config map being re-parsed on every call.
//
// ReadCSV and Output are constructed with a TableStore, injected by the
// Executor at graph-build time rather than read from process-global
// state.
package node
