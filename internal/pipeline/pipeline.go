// Package pipeline runs training epochs in process: every worker folds the transition
// stage over its partition, the resulting states are merged, finalized and decoded back
// into weights that seed the next epoch.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/aggregate"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/config"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/parallel"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/registry"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/store"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// ErrNoData is returned when an epoch finishes without any state, i.e. every partition
// was empty.
var ErrNoData = errors.New("no partition produced a state")

// Partition is the ordered list of batches one worker trains on.
type Partition []aggregate.Batch

// Evaluator scores the weights produced by an epoch.
type Evaluator interface {
	Evaluate(ctx context.Context, weights tensor.WeightSet) (map[string]float64, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, weights tensor.WeightSet) (map[string]float64, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, weights tensor.WeightSet) (map[string]float64, error) {
	return f(ctx, weights)
}

// Options are the optional parts of a run.
type Options struct {
	Evaluator Evaluator          // Scores every epoch if set
	Store     *store.Store       // Keeps the final state of every epoch if set
	OnEpoch   func(*EpochResult) // Called after every epoch, in order
}

// EpochResult describes one finished epoch.
type EpochResult struct {
	RunID      string
	Epoch      int // 1-based
	Count      float32
	Weights    tensor.WeightSet
	Metrics    map[string]float64
	Checkpoint string // Path of the stored state, if Options.Store is set
	Duration   time.Duration
}

// Result is the outcome of Run.
type Result struct {
	RunID   string
	Epochs  []*EpochResult
	Weights tensor.WeightSet // Weights after the last epoch
	State   []byte           // Final state of the last epoch, framed as configured
}

// Run trains cfg.Training.Epochs epochs starting from initial. Partitions are trained
// concurrently on up to cfg.Cluster.Workers goroutines.
func Run(ctx context.Context, cfg *config.Config, reg *registry.Registry, initial tensor.WeightSet,
	trainer aggregate.Trainer, partitions []Partition, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stages := aggregate.New(reg, cfg.Framing())
	weights, err := stages.InitialWeights(initial)
	if err != nil {
		return nil, errors.WithMessage(err, "encoding initial weights")
	}
	if weights == nil {
		return nil, aggregate.ErrNoInitialWeights
	}

	result := &Result{RunID: uuid.NewString()}
	klog.Infof("run %s: %d epochs, %d partitions, %d workers, %d weights",
		result.RunID, cfg.Training.Epochs, len(partitions), cfg.Cluster.Workers, reg.TotalElements())

	for epoch := 1; epoch <= cfg.Training.Epochs; epoch++ {
		start := time.Now()
		state, err := runEpoch(ctx, stages, weights, trainer, partitions, cfg.Parallel())
		if err != nil {
			return nil, errors.WithMessagef(err, "run %s epoch %d", result.RunID, epoch)
		}
		weights, err = stages.ModelWeights(state)
		if err != nil {
			return nil, errors.WithMessagef(err, "run %s epoch %d: extracting weights", result.RunID, epoch)
		}
		count, ws, err := stages.Decode(state)
		if err != nil {
			return nil, errors.WithMessagef(err, "run %s epoch %d: decoding state", result.RunID, epoch)
		}

		er := &EpochResult{RunID: result.RunID, Epoch: epoch, Count: count, Weights: ws}
		if opts.Evaluator != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			er.Metrics, err = opts.Evaluator.Evaluate(ctx, ws)
			if err != nil {
				return nil, errors.WithMessagef(err, "run %s epoch %d: evaluating", result.RunID, epoch)
			}
		}
		if opts.Store != nil {
			er.Checkpoint, err = opts.Store.Save(result.RunID, epoch, state)
			if err != nil {
				return nil, errors.WithMessagef(err, "run %s epoch %d: storing state", result.RunID, epoch)
			}
		}
		er.Duration = time.Since(start)
		klog.Infof("run %s: epoch %d/%d done, %g items in %s", result.RunID, epoch, cfg.Training.Epochs, count, er.Duration)

		result.Epochs = append(result.Epochs, er)
		result.Weights, result.State = ws, state
		if opts.OnEpoch != nil {
			opts.OnEpoch(er)
		}
	}
	return result, nil
}

// runEpoch folds Transition over every partition, merges the per-partition states in
// partition order and finalizes the result.
func runEpoch(ctx context.Context, stages *aggregate.Stages, weights []byte, trainer aggregate.Trainer,
	partitions []Partition, pcfg parallel.Config) ([]byte, error) {
	states := make([][]byte, len(partitions))
	err := parallel.ForErr(len(partitions), func(i int) error {
		var state []byte
		for j, batch := range partitions[i] {
			var err error
			state, err = stages.Transition(ctx, state, weights, trainer, batch)
			if err != nil {
				return errors.WithMessagef(err, "partition %d batch %d", i, j)
			}
		}
		klog.V(1).Infof("partition %d: %d batches", i, len(partitions[i]))
		states[i] = state
		return nil
	}, pcfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []byte
	for i, state := range states {
		merged, err = stages.Merge(merged, state)
		if err != nil {
			return nil, errors.WithMessagef(err, "merging partition %d", i)
		}
	}
	final, err := stages.Final(merged)
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, ErrNoData
	}
	return final, nil
}
