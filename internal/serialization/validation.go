package serialization

import (
	"github.com/pkg/errors"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// MaxElements bounds the number of float32 values a single buffer may carry (8 GiB).
const MaxElements = 1 << 31

// ValidateShapes checks every shape has positive dimensions and that their total element
// count stays within MaxElements. It returns the total.
func ValidateShapes(shapes []tensor.Shape) (int, error) {
	total := 0
	for i, s := range shapes {
		if err := s.Validate(); err != nil {
			return 0, errors.Wrapf(ErrInvalidShape, "shape #%d %v: %v", i, []int(s), err)
		}
		n := s.NumElements()
		if n > MaxElements || total > MaxElements-n {
			return 0, errors.Wrapf(ErrTooManyElements, "shapes exceed %d elements at shape #%d", MaxElements, i)
		}
		total += n
	}
	return total, nil
}

// checkCount validates an element count read from an untrusted buffer.
func checkCount(n uint64) error {
	if n > MaxElements {
		return errors.Wrapf(ErrTooManyElements, "got %d, max %d", n, MaxElements)
	}
	return nil
}
