package fixture

import (
	"errors"
	"fmt"
)

// Consistency errors between the two fixture files.
var (
	ErrShapeMismatch   = errors.New("metadata shape does not match model")
	ErrModelIDMismatch = errors.New("parameter file belongs to a different model")
)

// FilesystemError reports a failed directory or file operation.
type FilesystemError struct {
	Op   string // "mkdir", "write", "read"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// SerializationError reports a failure to encode or decode fixture contents.
type SerializationError struct {
	Op   string // "encode" or "decode"
	What string // "parameters" or "metadata"
	Err  error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.What, e.Err)
}

// Unwrap returns the underlying error.
func (e *SerializationError) Unwrap() error {
	return e.Err
}
