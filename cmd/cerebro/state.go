package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/arch"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/registry"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/store"
)

func stateCmd(args []string) {
	fs := newFlagSet("state")
	path := fs.String("f", "", "Serialized state file, optionally enveloped.")
	archPath := fs.String("arch", "", "Model architecture JSON file used to reshape the weights.")
	flat := fs.Bool("flat", false, "The file holds weights only (no leading count).")
	must.M(fs.Parse(args))
	if *path == "" {
		fatalf("Missing state file. See 'cerebro state -help'.")
	}

	buf, err := store.ReadFile(*path)
	if err != nil {
		fatalf("%+v", err)
	}
	enveloped := serialization.IsWrapped(buf)
	if enveloped {
		if buf, err = serialization.Unwrap(buf); err != nil {
			fatalf("%+v", err)
		}
	}

	var st *serialization.State
	if *flat {
		values, err := serialization.BytesToFloat32s(buf)
		if err != nil {
			fatalf("%+v", err)
		}
		if values != nil {
			st = &serialization.State{Weights: values}
		}
	} else if st, err = serialization.Split(buf); err != nil {
		fatalf("%+v", err)
	}

	fmt.Println(titleStyle.Render("State"))
	table := newPlainTable(false)
	table.Row("file", *path)
	table.Row("enveloped", fmt.Sprint(enveloped))
	if st == nil {
		table.Row("state", "absent")
		fmt.Println(table.Render())
		return
	}
	if !*flat {
		table.Row("count", humanize.Commaf(float64(st.Count)))
	}
	table.Row("# parameters", humanize.Comma(int64(len(st.Weights))))
	if len(st.Weights) > 0 {
		values := toFloat64(st.Weights)
		table.Row("min", fmt.Sprintf("%g", floats.Min(values)))
		table.Row("max", fmt.Sprintf("%g", floats.Max(values)))
		mean, std := stat.MeanStdDev(values, nil)
		table.Row("mean", fmt.Sprintf("%g", mean))
		table.Row("stddev", fmt.Sprintf("%g", std))
	}
	fmt.Println(table.Render())

	if *archPath != "" {
		reportLayers(*archPath, st)
	}
}

// reportLayers reshapes the state weights with the shapes inferred from an architecture.
func reportLayers(archPath string, st *serialization.State) {
	a, err := arch.ParseFile(archPath)
	if err != nil {
		fatalf("%+v", err)
	}
	specs, err := a.WeightSpecs()
	if err != nil {
		fatalf("%+v", err)
	}
	reg, err := registry.FromArchitecture(a)
	if err != nil {
		fatalf("%+v", err)
	}
	ws, err := reg.Unflatten(st.Weights)
	if err != nil {
		fatalf("%+v", err)
	}

	fmt.Println(titleStyle.Render("Weights"))
	table := newPlainTable(true)
	table.Headers("#", "Layer", "Weight", "Shape", "Mean", "Norm")
	for i, w := range ws {
		values := toFloat64(w.Data())
		table.Row(fmt.Sprint(i), specs[i].LayerName, specs[i].Name, w.Shape().String(),
			fmt.Sprintf("%.4g", stat.Mean(values, nil)), fmt.Sprintf("%.4g", floats.Norm(values, 2)))
	}
	fmt.Println(table.Render())
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
