package domain

import "errors"

var (
	// ErrRecordNotFound signals a missing metadata record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRecord signals a record that violates the metadata contract.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidQuery signals a malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnsupportedFile signals a file no extractor can handle.
	ErrUnsupportedFile = errors.New("unsupported file")
	// ErrCorruptFile signals a file whose metadata could not be read.
	ErrCorruptFile = errors.New("corrupt file")
)
