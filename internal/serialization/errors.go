package serialization

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrTruncatedBuffer    = errors.New("buffer length is not a multiple of the element size")
	ErrInvalidShape       = errors.New("invalid shape")
	ErrTooManyElements    = errors.New("too many elements")
	ErrChecksumMismatch   = errors.New("checksum mismatch: payload may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrUnsupportedDType   = errors.New("unsupported element type")
)

// ShapeMismatchError reports a buffer whose element count disagrees with the shapes it is
// decoded against. It unwraps to ErrShapeMismatch.
type ShapeMismatchError struct {
	Expected int // Elements implied by the shapes
	Actual   int // Elements found in the buffer
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: number of elements in model weights (%d) doesn't match model (%d)",
		ErrShapeMismatch, e.Actual, e.Expected)
}

// Unwrap allows errors.Is(err, ErrShapeMismatch).
func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}
