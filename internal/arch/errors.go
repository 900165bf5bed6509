package arch

import "github.com/pkg/errors"

// Common errors.
var (
	ErrMalformedArchitecture = errors.New("unable to read model architecture JSON")
	ErrMissingInputShape     = errors.New("unable to get input shape from model architecture")
	ErrMissingUnitsConfig    = errors.New("unable to get number of classes from model architecture")
	ErrUnsupportedLayer      = errors.New("unsupported layer for weight shape inference")
	ErrUnknownDimension      = errors.New("dimension is unknown")
)
