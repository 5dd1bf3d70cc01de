package storage

import "errors"

var (
	// ErrFileNotFound is returned by ReadCSV when id names no stored table.
	// pkg/node's ReadCSV node checks for this via errors.Is to produce an
	// "Uploaded file not found: <id>" node error.
	ErrFileNotFound = errors.New("storage: file not found")
	// ErrEmptyFile is returned when a CSV source has no rows at all (not
	// even a header).
	ErrEmptyFile = errors.New("storage: file is empty")
	// ErrMalformedCSV wraps a parse error from the CSV reader. Rows of
	// differing length are not an error: missing cells read as NULL and
	// cells past the header's width are dropped.
	ErrMalformedCSV = errors.New("storage: malformed csv")
)
