package aggregate

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/registry"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// Batch is an opaque unit of training data. Only the Trainer looks inside it.
type Batch = any

// Trainer trains a model on one batch. It is a black box to the aggregate: it receives
// the current weights and returns the updated ones and the number of items it consumed.
type Trainer interface {
	Train(ctx context.Context, weights tensor.WeightSet, batch Batch) (tensor.WeightSet, int, error)
}

// TrainerFunc adapts a function to the Trainer interface.
type TrainerFunc func(ctx context.Context, weights tensor.WeightSet, batch Batch) (tensor.WeightSet, int, error)

// Train implements Trainer.
func (f TrainerFunc) Train(ctx context.Context, weights tensor.WeightSet, batch Batch) (tensor.WeightSet, int, error) {
	return f(ctx, weights, batch)
}

// Stages runs the aggregate stages for one model. It holds no mutable state and is safe
// for concurrent use.
type Stages struct {
	registry *registry.Registry
	framing  serialization.Framing
}

// New returns the stages for models with the shapes of reg.
func New(reg *registry.Registry, framing serialization.Framing) *Stages {
	return &Stages{registry: reg, framing: framing}
}

// Registry returns the shape registry the stages decode with.
func (s *Stages) Registry() *registry.Registry {
	return s.registry
}

// InitialWeights serializes the starting weights as the Form B buffer Transition expects.
func (s *Stages) InitialWeights(ws tensor.WeightSet) ([]byte, error) {
	buf, err := s.registry.Encode(ws)
	if err != nil || buf == nil {
		return nil, err
	}
	return s.framing.Seal(buf)
}

// Transition trains on batch, starting from state or, if state is nil, from the Form B
// initial weights, and returns the updated state with the consumed items added to its count.
func (s *Stages) Transition(ctx context.Context, state, initial []byte, trainer Trainer, batch Batch) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, err := s.open(state)
	if err != nil {
		return nil, errors.WithMessage(err, "transition: reading state")
	}

	var (
		count   float32
		weights tensor.WeightSet
	)
	if current == nil {
		raw, err := s.framing.Open(initial)
		if err != nil {
			return nil, errors.WithMessage(err, "transition: reading initial weights")
		}
		weights, err = s.registry.Decode(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "transition: decoding initial weights")
		}
		if weights == nil {
			return nil, ErrNoInitialWeights
		}
	} else {
		count = current.Count
		weights, err = s.registry.Unflatten(current.Weights)
		if err != nil {
			return nil, errors.WithMessage(err, "transition: decoding state")
		}
	}

	updated, n, err := trainer.Train(ctx, weights, batch)
	if err != nil {
		return nil, errors.WithMessage(err, "transition: training")
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrNegativeCount, "trainer reported %d items", n)
	}
	if err := s.registry.Check(updated); err != nil {
		return nil, errors.WithMessage(err, "transition: trained weights")
	}
	count += float32(n)
	klog.V(2).Infof("transition: %d items, count now %g", n, count)
	return s.framing.SealState(serialization.CombineND(count, updated))
}

// Merge combines two states into their count-weighted average. If one side is nil the
// other is returned unchanged.
func (s *Stages) Merge(a, b []byte) ([]byte, error) {
	stateA, err := s.open(a)
	if err != nil {
		return nil, errors.WithMessage(err, "merge: reading first state")
	}
	stateB, err := s.open(b)
	if err != nil {
		return nil, errors.WithMessage(err, "merge: reading second state")
	}
	switch {
	case stateA == nil && stateB == nil:
		return nil, nil
	case stateA == nil:
		return b, nil
	case stateB == nil:
		return a, nil
	}

	merged := mergeStates(stateA, stateB)
	klog.V(2).Infof("merge: counts %g + %g", stateA.Count, stateB.Count)
	return s.framing.SealState(merged.Bytes())
}

// mergeStates averages weights weighted by count. When neither side has processed any
// item, both weigh the same.
func mergeStates(a, b *serialization.State) *serialization.State {
	wa, wb := float64(a.Count), float64(b.Count)
	total := wa + wb
	if total == 0 {
		wa, wb, total = 1, 1, 2
	}

	sum := make([]float64, len(a.Weights))
	floats.AddScaled(sum, wa/total, toFloat64(a.Weights))
	floats.AddScaled(sum, wb/total, toFloat64(b.Weights))
	return &serialization.State{
		Count:   a.Count + b.Count,
		Weights: toFloat32(sum),
	}
}

// Final validates the fully merged state of an iteration and returns it.
func (s *Stages) Final(state []byte) ([]byte, error) {
	current, err := s.open(state)
	if err != nil {
		return nil, errors.WithMessage(err, "final: reading state")
	}
	if current == nil {
		return nil, nil
	}
	if current.Count <= 0 {
		return nil, errors.Wrapf(ErrEmptyState, "count %g", current.Count)
	}
	klog.V(1).Infof("final: %g items processed", current.Count)
	return state, nil
}

// ModelWeights extracts the Form B weights of a state, dropping the count.
func (s *Stages) ModelWeights(state []byte) ([]byte, error) {
	raw, err := s.framing.Open(state)
	if err != nil {
		return nil, err
	}
	flat, err := serialization.ExtractFlatWeights(raw)
	if err != nil || flat == nil {
		return nil, err
	}
	return s.framing.Seal(flat)
}

// Decode reshapes a state into nd weights, returning its count too.
func (s *Stages) Decode(state []byte) (float32, tensor.WeightSet, error) {
	current, err := s.open(state)
	if err != nil || current == nil {
		return 0, nil, err
	}
	ws, err := s.registry.Unflatten(current.Weights)
	return current.Count, ws, err
}

// open unframes and splits a state, checking its size against the registry.
func (s *Stages) open(buf []byte) (*serialization.State, error) {
	raw, err := s.framing.Open(buf)
	if err != nil {
		return nil, err
	}
	state, err := serialization.Split(raw)
	if err != nil || state == nil {
		return nil, err
	}
	if len(state.Weights) != s.registry.TotalElements() {
		return nil, &serialization.ShapeMismatchError{Expected: s.registry.TotalElements(), Actual: len(state.Weights)}
	}
	if math.IsNaN(float64(state.Count)) || math.IsInf(float64(state.Count), 0) {
		return nil, errors.Wrapf(ErrInvalidCount, "state count %g", state.Count)
	}
	if state.Count < 0 {
		return nil, errors.Wrapf(ErrNegativeCount, "state count %g", state.Count)
	}
	return state, nil
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
