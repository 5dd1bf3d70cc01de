// Package config centralizes the workflow engine's execution limits:
// MaxExecutionTime, MaxNodes, MaxEdges, MaxExpressionLength. Default,
// Development, and Production return pre-populated Configs; Validate
// checks every field is non-negative.
package config
