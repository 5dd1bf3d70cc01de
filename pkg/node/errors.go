package node

import "errors"

// Sentinel errors for node construction and execution.
var (
	// ErrUnknownNodeType is returned by Registry.New for an unregistered
	// node type; the Executor treats this as an engine-level error.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrMissingConfigField is wrapped with the field name when a
	// required config field is absent or empty.
	ErrMissingConfigField = errors.New("missing required config field")

	// ErrInvalidConfigField is wrapped with the field name and reason
	// when a present config field has an invalid value.
	ErrInvalidConfigField = errors.New("invalid config field")

	// ErrColumnNotFound is the sentinel for a column absent from a node's
	// input table. The built-in nodes do not return it; they report
	// missing columns in their NodeResult error message.
	ErrColumnNotFound = errors.New("column not found")

	// ErrWrongInputCount's message is the node error when a node is
	// invoked with the wrong number of input tables (or a nil input); the
	// expected and actual counts are not included.
	ErrWrongInputCount = errors.New("wrong number of inputs")

	// ErrUnsupportedAggregation is wrapped with the op name for an
	// Aggregate config naming an op outside the fixed supported set.
	ErrUnsupportedAggregation = errors.New("unsupported aggregation op")

	// ErrUnsupportedFormat is returned by Output for any config.format
	// other than "csv".
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrFileNotFound is the contract a TableStore.ReadCSV implementation
	// must satisfy (via errors.Is / wrapping) to signal a missing upload,
	// so ReadCSV can distinguish "not found" from other I/O failures.
	ErrFileNotFound = errors.New("file not found")
)
