package arch

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Form tells which of the supported document shapes an architecture was read from.
type Form int

// Supported architecture forms.
const (
	SequentialForm Form = iota + 1
	FunctionalForm
)

// String implements fmt.Stringer.
func (f Form) String() string {
	switch f {
	case SequentialForm:
		return "sequential"
	case FunctionalForm:
		return "functional"
	default:
		return "unknown"
	}
}

// UnknownDim marks a dimension declared as null in the architecture.
const UnknownDim = -1

// Layer is a single layer descriptor.
type Layer struct {
	ClassName string
	Config    map[string]json.RawMessage
}

// Name returns the layer's configured name, if any.
func (l Layer) Name() string {
	name, _, _ := l.stringParam("name")
	return name
}

// Units returns the layer's "units" configuration. ok is false if it is not declared.
func (l Layer) Units() (units int, ok bool, err error) {
	return l.intParam("units")
}

// Architecture is a parsed model architecture. It is immutable and safe for concurrent use.
type Architecture struct {
	form   Form
	layers []Layer
}

// ParseFile reads and parses an architecture JSON file.
func ParseFile(path string) (*Architecture, error) {
	//nolint:gosec // G304: architecture path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading architecture %q", path)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "parsing %q", path)
	}
	return a, nil
}

// Parse classifies the document into one of the supported forms and reads its layers.
func Parse(data []byte) (*Architecture, error) {
	doc := bytes.TrimSpace(data)
	if len(doc) == 0 {
		return nil, errors.Wrap(ErrMalformedArchitecture, "empty document")
	}

	var (
		form      Form
		layersRaw json.RawMessage
	)
	switch doc[0] {
	case '[':
		form, layersRaw = SequentialForm, doc
	case '{':
		var top map[string]json.RawMessage
		if err := json.Unmarshal(doc, &top); err != nil {
			return nil, errors.Wrapf(ErrMalformedArchitecture, "%v", err)
		}
		var err error
		form, layersRaw, err = classifyMapping(top)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrap(ErrMalformedArchitecture, "document is neither a list nor a mapping")
	}

	layers, err := parseLayers(layersRaw)
	if err != nil {
		return nil, err
	}
	return &Architecture{form: form, layers: layers}, nil
}

// classifyMapping handles {"config": [...]}, {"config": {"layers": [...]}} and {"layers": [...]}.
func classifyMapping(top map[string]json.RawMessage) (Form, json.RawMessage, error) {
	config, hasConfig := top["config"]
	if !hasConfig {
		if layers, ok := top["layers"]; ok && isList(layers) {
			return FunctionalForm, layers, nil
		}
		return 0, nil, errors.Wrap(ErrMalformedArchitecture, `mapping has no "config" key`)
	}

	config = bytes.TrimSpace(config)
	if isList(config) {
		return SequentialForm, config, nil
	}
	if len(config) > 0 && config[0] == '{' {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(config, &inner); err != nil {
			return 0, nil, errors.Wrapf(ErrMalformedArchitecture, "config: %v", err)
		}
		if layers, ok := inner["layers"]; ok && isList(layers) {
			return FunctionalForm, layers, nil
		}
		return 0, nil, errors.Wrap(ErrMalformedArchitecture, `config has no "layers" list`)
	}
	return 0, nil, errors.Wrap(ErrMalformedArchitecture, "config is neither a list nor a mapping")
}

func isList(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

type layerJSON struct {
	ClassName *string                    `json:"class_name"`
	Config    map[string]json.RawMessage `json:"config"`
}

func parseLayers(raw json.RawMessage) ([]Layer, error) {
	var items []layerJSON
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(ErrMalformedArchitecture, "layers: %v", err)
	}
	if len(items) == 0 {
		return nil, errors.Wrap(ErrMalformedArchitecture, "no layers")
	}
	layers := make([]Layer, len(items))
	for i, item := range items {
		if item.ClassName == nil || *item.ClassName == "" {
			return nil, errors.Wrapf(ErrMalformedArchitecture, `layer #%d has no "class_name"`, i)
		}
		if item.Config == nil {
			return nil, errors.Wrapf(ErrMalformedArchitecture, `layer #%d (%s) has no "config" mapping`, i, *item.ClassName)
		}
		layers[i] = Layer{ClassName: *item.ClassName, Config: item.Config}
	}
	return layers, nil
}

// Form returns the document form the architecture was read from.
func (a *Architecture) Form() Form {
	return a.form
}

// Layers returns the layer descriptors in order.
func (a *Architecture) Layers() []Layer {
	out := make([]Layer, len(a.layers))
	copy(out, a.layers)
	return out
}

// NumLayers returns the number of layers.
func (a *Architecture) NumLayers() int {
	return len(a.layers)
}

// InputShape returns the first layer's declared batch input shape without the leading
// batch dimension. Null dimensions are reported as UnknownDim.
func (a *Architecture) InputShape() ([]int, error) {
	first := a.layers[0]
	raw, ok := first.Config["batch_input_shape"]
	if !ok {
		return nil, errors.Wrapf(ErrMissingInputShape, "first layer %s has no batch_input_shape", first.ClassName)
	}
	var dims []*int
	if err := json.Unmarshal(raw, &dims); err != nil || len(dims) == 0 {
		return nil, errors.Wrapf(ErrMissingInputShape, "invalid batch_input_shape %s", raw)
	}
	shape := make([]int, len(dims)-1)
	for i, d := range dims[1:] {
		if d == nil {
			shape[i] = UnknownDim
		} else {
			shape[i] = *d
		}
	}
	return shape, nil
}

// NumClasses scans layers from last to first and returns the first "units" value found:
// the final dense layer's width is taken to be the number of classes.
func (a *Architecture) NumClasses() (int, error) {
	for i := len(a.layers) - 1; i >= 0; i-- {
		units, ok, err := a.layers[i].Units()
		if err != nil {
			return 0, errors.WithMessagef(err, "layer #%d (%s)", i, a.layers[i].ClassName)
		}
		if ok {
			return units, nil
		}
	}
	return 0, errors.Wrap(ErrMissingUnitsConfig, `no layer declares "units"`)
}

// Describe renders the layers top to bottom, one per line, annotating Dense layers with
// their number of units.
func (a *Architecture) Describe() string {
	var sb strings.Builder
	sb.WriteString("Model arch layers:\n")
	for i, layer := range a.layers {
		if i > 0 {
			sb.WriteString("   |\n")
			sb.WriteString("   V\n")
		}
		sb.WriteString(layer.ClassName)
		if layer.ClassName == "Dense" {
			if units, ok, err := layer.Units(); ok && err == nil {
				sb.WriteString("[")
				sb.WriteString(strconv.Itoa(units))
				sb.WriteString("]")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
