package config

import "errors"

// Sentinel errors for configuration validation.
var (
	ErrInvalidExecutionTime    = errors.New("invalid max execution time: must be non-negative")
	ErrInvalidMaxNodes         = errors.New("invalid max nodes: must be non-negative")
	ErrInvalidMaxEdges         = errors.New("invalid max edges: must be non-negative")
	ErrInvalidExpressionLength = errors.New("invalid max expression length: must be non-negative")
)
