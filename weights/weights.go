// Copyright 2025 The Cerebro Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package weights

import (
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/arch"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/registry"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/tensor"
)

// Errors returned by the codec and the introspector. Use errors.Is to test for them.
var (
	ErrShapeMismatch      = serialization.ErrShapeMismatch
	ErrTruncatedBuffer    = serialization.ErrTruncatedBuffer
	ErrInvalidShape       = serialization.ErrInvalidShape
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion

	ErrMalformedArchitecture = arch.ErrMalformedArchitecture
	ErrMissingInputShape     = arch.ErrMissingInputShape
	ErrMissingUnitsConfig    = arch.ErrMissingUnitsConfig
	ErrUnsupportedLayer      = arch.ErrUnsupportedLayer
)

// ShapeMismatchError details an element count that does not match the shapes.
type ShapeMismatchError = serialization.ShapeMismatchError

// State is a decoded Form A buffer.
type State = serialization.State

// WrapOptions configures Wrap.
type WrapOptions = serialization.WrapOptions

// Registry is the immutable ordered list of a model's weight shapes.
type Registry = registry.Registry

// Architecture is a parsed model architecture.
type Architecture = arch.Architecture

// Layer is one layer of an Architecture.
type Layer = arch.Layer

// WeightSpec names and shapes one weight array of an Architecture.
type WeightSpec = arch.WeightSpec

// Form tells how an architecture document is laid out.
type Form = arch.Form

// Architecture forms.
const (
	SequentialForm = arch.SequentialForm
	FunctionalForm = arch.FunctionalForm
)

// Encode serializes ws as a Form B buffer.
func Encode(ws tensor.WeightSet) []byte {
	return serialization.EncodeND(ws)
}

// Decode reshapes a Form B buffer into arrays of the given shapes.
func Decode(buf []byte, shapes []tensor.Shape) (tensor.WeightSet, error) {
	return serialization.DecodeND(buf, shapes)
}

// Combine serializes a count and flat weights as a Form A buffer.
func Combine(count float32, flat []float32) []byte {
	return serialization.Combine(count, flat)
}

// CombineND serializes a count and weights as a Form A buffer.
func CombineND(count float32, ws tensor.WeightSet) []byte {
	return serialization.CombineND(count, ws)
}

// Split decodes a Form A buffer.
func Split(buf []byte) (*State, error) {
	return serialization.Split(buf)
}

// ExtractFlatWeights turns a Form A buffer into the Form B buffer of its weights.
func ExtractFlatWeights(buf []byte) ([]byte, error) {
	return serialization.ExtractFlatWeights(buf)
}

// Wrap puts a header-less buffer inside a versioned envelope.
func Wrap(buf []byte, opts WrapOptions) ([]byte, error) {
	return serialization.Wrap(buf, opts)
}

// Unwrap returns the header-less float32 content of an envelope.
func Unwrap(buf []byte) ([]byte, error) {
	return serialization.Unwrap(buf)
}

// IsWrapped reports whether buf starts with an envelope.
func IsWrapped(buf []byte) bool {
	return serialization.IsWrapped(buf)
}

// NewRegistry validates shapes and returns a registry holding copies of them.
func NewRegistry(shapes ...tensor.Shape) (*Registry, error) {
	return registry.New(shapes...)
}

// RegistryFromArchitecture infers the weight shapes of a.
func RegistryFromArchitecture(a *Architecture) (*Registry, error) {
	return registry.FromArchitecture(a)
}

// ParseArchitecture parses an architecture JSON document.
func ParseArchitecture(data []byte) (*Architecture, error) {
	return arch.Parse(data)
}

// ParseArchitectureFile reads and parses an architecture JSON file.
func ParseArchitectureFile(path string) (*Architecture, error) {
	return arch.ParseFile(path)
}
