package serialization

import (
	"math"

	"github.com/pkg/errors"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// Float32sToBytes serializes values as consecutive little-endian float32, with no header.
// A nil slice yields nil.
func Float32sToBytes(values []float32) []byte {
	if values == nil {
		return nil
	}
	buf := make([]byte, len(values)*ElementSize)
	for i, v := range values {
		ByteOrder.PutUint32(buf[i*ElementSize:], math.Float32bits(v))
	}
	return buf
}

// BytesToFloat32s is the inverse of Float32sToBytes. A nil or empty buffer yields nil.
func BytesToFloat32s(buf []byte) ([]float32, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf)%ElementSize != 0 {
		return nil, errors.Wrapf(ErrTruncatedBuffer, "got %d bytes", len(buf))
	}
	if err := checkCount(uint64(len(buf) / ElementSize)); err != nil {
		return nil, err
	}
	values := make([]float32, len(buf)/ElementSize)
	for i := range values {
		values[i] = math.Float32frombits(ByteOrder.Uint32(buf[i*ElementSize:]))
	}
	return values, nil
}

// EncodeND flattens each array of weights in order, concatenates them and serializes
// the result as a Form B buffer. Absent weights yield nil.
func EncodeND(weights tensor.WeightSet) []byte {
	if weights == nil {
		return nil
	}
	return Float32sToBytes(weights.Flatten())
}

// DecodeND reconstructs the weights serialized in buf, slicing the flat float sequence
// in order into arrays of the given shapes.
//
// It returns nil, nil if buf or shapes is empty. If the total element count of shapes
// differs from the number of floats in buf, it returns a *ShapeMismatchError: the buffer
// is never truncated or padded to fit.
func DecodeND(buf []byte, shapes []tensor.Shape) (tensor.WeightSet, error) {
	if len(buf) == 0 || len(shapes) == 0 {
		return nil, nil
	}
	flat, err := BytesToFloat32s(buf)
	if err != nil {
		return nil, err
	}
	return Unflatten(flat, shapes)
}

// Unflatten splits flat into consecutive arrays of the given shapes. The arrays share
// flat's backing storage.
func Unflatten(flat []float32, shapes []tensor.Shape) (tensor.WeightSet, error) {
	if flat == nil || len(shapes) == 0 {
		return nil, nil
	}
	total, err := ValidateShapes(shapes)
	if err != nil {
		return nil, err
	}
	if total != len(flat) {
		return nil, &ShapeMismatchError{Expected: total, Actual: len(flat)}
	}

	weights := make(tensor.WeightSet, len(shapes))
	start := 0
	for i, shape := range shapes {
		end := start + shape.NumElements()
		arr, err := tensor.NewArray(shape, flat[start:end:end])
		if err != nil {
			return nil, errors.Wrapf(err, "reshaping weights #%d", i)
		}
		weights[i] = arr
		start = end
	}
	return weights, nil
}
