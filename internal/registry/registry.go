// Package registry holds the ordered weight shapes of a model for the duration of a
// training run.
package registry

import (
	"github.com/pkg/errors"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/arch"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// Registry is an immutable ordered list of per-layer weight shapes. It is safe to share
// across goroutines.
type Registry struct {
	shapes  []tensor.Shape
	offsets []int
	total   int
}

// New validates and copies shapes.
func New(shapes ...tensor.Shape) (*Registry, error) {
	if len(shapes) == 0 {
		return nil, errors.Wrap(serialization.ErrInvalidShape, "registry needs at least one shape")
	}
	total, err := serialization.ValidateShapes(shapes)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		shapes:  make([]tensor.Shape, len(shapes)),
		offsets: make([]int, len(shapes)),
		total:   total,
	}
	offset := 0
	for i, s := range shapes {
		r.shapes[i] = s.Clone()
		r.offsets[i] = offset
		offset += s.NumElements()
	}
	return r, nil
}

// FromArchitecture derives the registry from the weight shapes inferred from a.
func FromArchitecture(a *arch.Architecture) (*Registry, error) {
	shapes, err := a.WeightShapes()
	if err != nil {
		return nil, errors.WithMessage(err, "deriving weight shapes")
	}
	return New(shapes...)
}

// FromWeights derives the registry from the shapes of an existing weight set.
func FromWeights(ws tensor.WeightSet) (*Registry, error) {
	return New(ws.Shapes()...)
}

// Len returns the number of shapes.
func (r *Registry) Len() int {
	return len(r.shapes)
}

// Shape returns a copy of the i-th shape.
func (r *Registry) Shape(i int) tensor.Shape {
	return r.shapes[i].Clone()
}

// Shapes returns a copy of all shapes.
func (r *Registry) Shapes() []tensor.Shape {
	out := make([]tensor.Shape, len(r.shapes))
	for i, s := range r.shapes {
		out[i] = s.Clone()
	}
	return out
}

// Offset returns the position of the i-th array inside the flat weights.
func (r *Registry) Offset(i int) int {
	return r.offsets[i]
}

// TotalElements returns the number of floats a flat weight buffer must hold.
func (r *Registry) TotalElements() int {
	return r.total
}

// Encode serializes ws after checking it matches the registry.
func (r *Registry) Encode(ws tensor.WeightSet) ([]byte, error) {
	if ws == nil {
		return nil, nil
	}
	if err := r.Check(ws); err != nil {
		return nil, err
	}
	return serialization.EncodeND(ws), nil
}

// Decode reshapes a Form B buffer into the registry's shapes.
func (r *Registry) Decode(buf []byte) (tensor.WeightSet, error) {
	return serialization.DecodeND(buf, r.shapes)
}

// Unflatten reshapes flat weights into the registry's shapes.
func (r *Registry) Unflatten(flat []float32) (tensor.WeightSet, error) {
	return serialization.Unflatten(flat, r.shapes)
}

// Check verifies ws has exactly the registry's shapes, in order.
func (r *Registry) Check(ws tensor.WeightSet) error {
	if len(ws) != len(r.shapes) {
		return &serialization.ShapeMismatchError{Expected: r.total, Actual: ws.NumElements()}
	}
	for i, a := range ws {
		if !a.Shape().Equal(r.shapes[i]) {
			return errors.Wrapf(serialization.ErrShapeMismatch, "weights #%d have shape %v, registry expects %v",
				i, a.Shape(), r.shapes[i])
		}
	}
	return nil
}
