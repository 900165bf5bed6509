package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/aggregate"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/arch"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/config"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/pipeline"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/registry"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/store"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

func simulateCmd(args []string) {
	fs := newFlagSet("simulate")
	archPath := fs.String("arch", "", "Model architecture JSON file.")
	configPath := fs.String("config", "", "Run configuration YAML file. Defaults are used if empty.")
	storeDir := fs.String("store", "", "Local directory where the state of every epoch is saved. "+
		"Overrides store.root of the configuration.")
	epochs := fs.Int("epochs", 0, "Number of epochs, overriding training.epochs if > 0.")
	batches := fs.Int("batches", 10, "Batches per partition.")
	batchSize := fs.Int("batch_size", 32, "Items per batch.")
	rate := fs.Float64("rate", 0.1, "Step of the synthetic trainer towards its target weights.")
	must.M(fs.Parse(args))
	if *archPath == "" {
		fatalf("Missing architecture file. See 'cerebro simulate -help'.")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatalf("%+v", err)
		}
	}
	if *epochs > 0 {
		cfg.Training.Epochs = *epochs
	}

	a, err := arch.ParseFile(*archPath)
	if err != nil {
		fatalf("%+v", err)
	}
	reg, err := registry.FromArchitecture(a)
	if err != nil {
		fatalf("%+v", err)
	}

	opts := pipeline.Options{}
	if *storeDir != "" {
		cfg.Store.Root = *storeDir
		if opts.Store, err = store.New(*storeDir); err != nil {
			fatalf("%+v", err)
		}
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Training.Seed), 0)) //nolint:gosec // G115,G404: simulation only
	initial := randomWeights(rng, reg, 0.05)
	target := randomWeights(rng, reg, 1)
	partitions := make([]pipeline.Partition, cfg.Cluster.Workers)
	for i := range partitions {
		partitions[i] = make(pipeline.Partition, *batches)
		for j := range partitions[i] {
			partitions[i][j] = *batchSize
		}
	}

	total := cfg.Training.Epochs * cfg.Cluster.Workers * *batches
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Training"),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("batches"),
		progressbar.OptionSetWriter(os.Stderr),
	)
	trainer := towardsTarget(target, float32(*rate), bar)

	results := newPlainTable(true)
	results.Headers("Epoch", "Items", "Distance", "Checkpoint", "Time")
	opts.Evaluator = pipeline.EvaluatorFunc(func(_ context.Context, ws tensor.WeightSet) (map[string]float64, error) {
		return map[string]float64{"distance": distance(ws, target)}, nil
	})
	opts.OnEpoch = func(er *pipeline.EpochResult) {
		results.Row(fmt.Sprint(er.Epoch), humanize.Commaf(float64(er.Count)),
			fmt.Sprintf("%.6f", er.Metrics["distance"]), er.Checkpoint, er.Duration.Round(time.Millisecond).String())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	res, err := pipeline.Run(ctx, cfg, reg, initial, trainer, partitions, opts)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		fatalf("%+v", err)
	}

	fmt.Println(titleStyle.Render("Run " + res.RunID))
	fmt.Println(results.Render())
	klog.V(1).Infof("initial distance %.6f", distance(initial, target))
}

// towardsTarget returns a trainer that moves every weight a fraction of the way to target
// and counts each batch (an int) as that many items.
func towardsTarget(target tensor.WeightSet, rate float32, bar *progressbar.ProgressBar) aggregate.Trainer {
	return aggregate.TrainerFunc(func(ctx context.Context, ws tensor.WeightSet, batch aggregate.Batch) (tensor.WeightSet, int, error) {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		out := ws.Clone()
		for i, w := range out {
			data, goal := w.Data(), target[i].Data()
			for j := range data {
				data[j] += rate * (goal[j] - data[j])
			}
		}
		_ = bar.Add(1)
		return out, batch.(int), nil
	})
}

func randomWeights(rng *rand.Rand, reg *registry.Registry, scale float64) tensor.WeightSet {
	ws := make(tensor.WeightSet, reg.Len())
	for i, shape := range reg.Shapes() {
		data := make([]float32, shape.NumElements())
		for j := range data {
			data[j] = float32(rng.NormFloat64() * scale)
		}
		ws[i] = tensor.MustNewArray(shape, data)
	}
	return ws
}

// distance is the root mean square difference between two weight sets.
func distance(a, b tensor.WeightSet) float64 {
	va, vb := toFloat64(a.Flatten()), toFloat64(b.Flatten())
	if len(va) == 0 {
		return 0
	}
	return floats.Distance(va, vb, 2) / math.Sqrt(float64(len(va)))
}
