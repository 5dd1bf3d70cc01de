package engine

import "errors"

// Sentinel errors for engine-level failures — the ones that abort
// Execute entirely rather than being recorded on a single node's
// NodeResult.
var (
	// ErrEmptyWorkflow is returned by Execute for a document with no nodes.
	ErrEmptyWorkflow = errors.New("workflow contains no nodes")

	// ErrTooManyNodes is returned by Execute when the document exceeds
	// config.Config.MaxNodes.
	ErrTooManyNodes = errors.New("workflow exceeds maximum node count")

	// ErrTooManyEdges is returned by Execute when the document exceeds
	// config.Config.MaxEdges.
	ErrTooManyEdges = errors.New("workflow exceeds maximum edge count")
)
