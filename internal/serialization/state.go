package serialization

import (
	"math"

	"github.com/pkg/errors"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// State is the unit exchanged between aggregate stages: a running counter (typically
// the number of items processed so far) and the flat model weights.
type State struct {
	Count   float32
	Weights []float32
}

// Combine serializes count followed by weights as a Form A buffer.
// Absent weights yield nil.
func Combine(count float32, weights []float32) []byte {
	if weights == nil {
		return nil
	}
	buf := make([]byte, ElementSize, (len(weights)+1)*ElementSize)
	ByteOrder.PutUint32(buf, math.Float32bits(count))
	return append(buf, Float32sToBytes(weights)...)
}

// CombineND flattens weights in order and serializes them behind count.
// Absent weights yield nil.
func CombineND(count float32, weights tensor.WeightSet) []byte {
	if weights == nil {
		return nil
	}
	return Combine(count, weights.Flatten())
}

// Split is the inverse of Combine. A nil or empty buffer means there is no state yet and
// yields nil, nil.
func Split(buf []byte) (*State, error) {
	values, err := BytesToFloat32s(buf)
	if err != nil {
		return nil, errors.WithMessage(err, "splitting state")
	}
	if values == nil {
		return nil, nil
	}
	return &State{Count: values[0], Weights: values[1:]}, nil
}

// ExtractFlatWeights drops the counter of a Form A buffer and returns the weights as
// their own Form B buffer. Absent input yields nil.
func ExtractFlatWeights(buf []byte) ([]byte, error) {
	state, err := Split(buf)
	if err != nil || state == nil {
		return nil, err
	}
	return Float32sToBytes(state.Weights), nil
}

// Bytes serializes the state as a Form A buffer.
func (s *State) Bytes() []byte {
	if s == nil {
		return nil
	}
	return Combine(s.Count, s.Weights)
}

// WeightSet reshapes the state's flat weights into arrays of the given shapes.
func (s *State) WeightSet(shapes []tensor.Shape) (tensor.WeightSet, error) {
	if s == nil {
		return nil, nil
	}
	return Unflatten(s.Weights, shapes)
}
