// Package logging provides structured logging with context propagation for
// the workflow engine, wrapping log/slog. Logger.With* methods chain
// immutable copies carrying workflow_id/execution_id/node_id/node_type
// fields, the way the Executor's per-call and per-node loggers are built.
package logging
