// Copyright 2025 The Cerebro Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// Type aliases for public API

// Number is a constraint for the Go types FromValues converts from.
type Number = tensor.Number

// DataType is an element type of the serialized forms.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float16 DataType = tensor.Float16
)

// Shape represents the dimensions of an array.
// Example: Shape{3, 3, 1, 8} is a 3x3 convolution kernel with 1 input and 8 output channels.
type Shape = tensor.Shape

// Array is a row-major float32 array with a fixed shape.
type Array = tensor.Array

// WeightSet is the ordered list of a model's weight arrays.
type WeightSet = tensor.WeightSet

// NewArray wraps data (without copying) in an array of the given shape.
func NewArray(shape Shape, data []float32) (*Array, error) {
	return tensor.NewArray(shape, data)
}

// MustNewArray is like NewArray but panics on error.
func MustNewArray(shape Shape, data []float32) *Array {
	return tensor.MustNewArray(shape, data)
}

// Zeros returns a zero-filled array.
func Zeros(shape Shape) (*Array, error) {
	return tensor.Zeros(shape)
}

// FromValues converts values to float32 and wraps them in an array.
func FromValues[T Number](shape Shape, values []T) (*Array, error) {
	return tensor.FromValues(shape, values)
}

// ParseDataType parses "float32" or "float16". The empty string means Float32.
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}

// TotalElements returns the sum of the element counts of shapes.
func TotalElements(shapes []Shape) int {
	return tensor.TotalElements(shapes)
}
