package aggregate

import "github.com/pkg/errors"

// Common errors.
var (
	ErrNoInitialWeights = errors.New("no state and no initial weights")
	ErrEmptyState       = errors.New("state has not processed any item")
	ErrNegativeCount    = errors.New("negative item count")
	ErrInvalidCount     = errors.New("item count is not a finite number")
)
