package tensor

import (
	"fmt"
	"slices"
)

// Array is a dense float32 array with a fixed shape, stored in row-major order.
type Array struct {
	shape  Shape
	stride []int
	data   []float32
}

// NewArray wraps data (row-major) with the given shape. The slice is not copied.
func NewArray(shape Shape, data []float32) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	return &Array{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   data,
	}, nil
}

// MustNewArray is NewArray that panics on error. Meant for literals in tests and examples.
func MustNewArray(shape Shape, data []float32) *Array {
	a, err := NewArray(shape, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Zeros allocates a zero-filled array.
func Zeros(shape Shape) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return NewArray(shape, make([]float32, shape.NumElements()))
}

// FromValues builds an array from any numeric slice, casting every element to float32.
func FromValues[T Number](shape Shape, values []T) (*Array, error) {
	data := make([]float32, len(values))
	for i, v := range values {
		data[i] = float32(v)
	}
	return NewArray(shape, data)
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// NumElements returns the number of elements.
func (a *Array) NumElements() int {
	return len(a.data)
}

// Data returns the backing row-major slice. Mutating it mutates the array.
func (a *Array) Data() []float32 {
	return a.data
}

// At returns the element at the given multi-dimensional index.
func (a *Array) At(idx ...int) float32 {
	return a.data[a.offset(idx)]
}

// Set stores v at the given multi-dimensional index.
func (a *Array) Set(v float32, idx ...int) {
	a.data[a.offset(idx)] = v
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("index rank %d does not match array rank %d", len(idx), len(a.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d of size %d", x, i, a.shape[i]))
		}
		off += x * a.stride[i]
	}
	return off
}

// Reshape returns a view of the same data with a new shape.
func (a *Array) Reshape(shape Shape) (*Array, error) {
	return NewArray(shape, a.data)
}

// Flatten returns a row-major copy of the elements.
func (a *Array) Flatten() []float32 {
	return slices.Clone(a.data)
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{
		shape:  a.shape.Clone(),
		stride: slices.Clone(a.stride),
		data:   slices.Clone(a.data),
	}
}

// Equal reports whether both arrays have the same shape and identical elements.
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.shape.Equal(other.shape) && slices.Equal(a.data, other.data)
}

// String implements fmt.Stringer.
func (a *Array) String() string {
	return fmt.Sprintf("Array%v%v", a.shape, a.data)
}

// WeightSet is the ordered list of per-layer weight arrays of a model.
type WeightSet []*Array

// Shapes returns the shape of every array, in order.
func (ws WeightSet) Shapes() []Shape {
	shapes := make([]Shape, len(ws))
	for i, a := range ws {
		shapes[i] = a.Shape().Clone()
	}
	return shapes
}

// NumElements returns the total number of elements across all arrays.
func (ws WeightSet) NumElements() int {
	n := 0
	for _, a := range ws {
		n += a.NumElements()
	}
	return n
}

// Flatten concatenates all arrays, in order, into one row-major slice.
func (ws WeightSet) Flatten() []float32 {
	flat := make([]float32, 0, ws.NumElements())
	for _, a := range ws {
		flat = append(flat, a.data...)
	}
	return flat
}

// Clone deep-copies every array.
func (ws WeightSet) Clone() WeightSet {
	if ws == nil {
		return nil
	}
	out := make(WeightSet, len(ws))
	for i, a := range ws {
		out[i] = a.Clone()
	}
	return out
}

// Equal reports whether both sets hold equal arrays in the same order.
func (ws WeightSet) Equal(other WeightSet) bool {
	if len(ws) != len(other) {
		return false
	}
	for i := range ws {
		if !ws[i].Equal(other[i]) {
			return false
		}
	}
	return true
}
