package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/arch"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
)

func archCmd(args []string) {
	fs := newFlagSet("arch")
	path := fs.String("f", "", "Model architecture JSON file.")
	describe := fs.Bool("describe", true, "Print the layer by layer description.")
	must.M(fs.Parse(args))
	if *path == "" {
		fatalf("Missing architecture file. See 'cerebro arch -help'.")
	}

	a, err := arch.ParseFile(*path)
	if err != nil {
		fatalf("%+v", err)
	}
	reportArchitecture(*path, a, *describe)
}

// formatDims renders a shape without batch dimension, showing unknown dimensions as "?".
func formatDims(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		if d == arch.UnknownDim {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprint(d)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func reportArchitecture(path string, a *arch.Architecture, describe bool) {
	fmt.Println(titleStyle.Render("Summary"))
	table := newPlainTable(false)
	table.Row("file", path)
	table.Row("form", a.Form().String())
	table.Row("# layers", humanize.Comma(int64(a.NumLayers())))
	if shape, err := a.InputShape(); err == nil {
		table.Row("input shape", formatDims(shape))
	} else {
		table.Row("input shape", err.Error())
	}
	if classes, err := a.NumClasses(); err == nil {
		table.Row("# classes", humanize.Comma(int64(classes)))
	} else {
		table.Row("# classes", err.Error())
	}

	specs, specsErr := a.WeightSpecs()
	if specsErr == nil {
		var total int
		for _, spec := range specs {
			total += spec.Shape.NumElements()
		}
		table.Row("# weights", humanize.Comma(int64(len(specs))))
		table.Row("# parameters", humanize.Comma(int64(total)))
		table.Row("state size", humanize.Bytes(uint64((total+1)*serialization.ElementSize)))
	} else {
		table.Row("weights", specsErr.Error())
	}
	fmt.Println(table.Render())

	if describe {
		fmt.Println(titleStyle.Render("Layers"))
		fmt.Print(a.Describe())
	}

	if specsErr == nil {
		fmt.Println(titleStyle.Render("Weights"))
		table := newPlainTable(true)
		table.Headers("#", "Layer", "Class", "Weight", "Shape", "Size")
		for i, spec := range specs {
			table.Row(fmt.Sprint(i), spec.LayerName, spec.LayerClass, spec.Name, spec.Shape.String(),
				humanize.Comma(int64(spec.Shape.NumElements())))
		}
		fmt.Println(table.Render())
	}
}
