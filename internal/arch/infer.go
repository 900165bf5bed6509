package arch

import (
	"github.com/pkg/errors"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// WeightSpec describes one weight array of a layer.
type WeightSpec struct {
	LayerIndex int
	LayerClass string
	LayerName  string
	Name       string // "kernel", "bias", "gamma", ...
	Shape      tensor.Shape
}

// WeightShapes returns the shapes of all weight arrays in model order.
func (a *Architecture) WeightShapes() ([]tensor.Shape, error) {
	specs, err := a.WeightSpecs()
	if err != nil {
		return nil, err
	}
	shapes := make([]tensor.Shape, len(specs))
	for i, spec := range specs {
		shapes[i] = spec.Shape
	}
	return shapes, nil
}

// WeightSpecs propagates the input shape through the layers and lists every weight array
// in the order a Keras model's get_weights() returns them: layer by layer, kernel before
// bias. Only channels-last layouts are supported.
func (a *Architecture) WeightSpecs() ([]WeightSpec, error) {
	shape, err := a.InputShape()
	if err != nil {
		return nil, err
	}

	var specs []WeightSpec
	for i, layer := range a.layers {
		add := func(name string, dims ...int) {
			specs = append(specs, WeightSpec{
				LayerIndex: i,
				LayerClass: layer.ClassName,
				LayerName:  layer.Name(),
				Name:       name,
				Shape:      tensor.Shape(dims),
			})
		}
		shape, err = propagate(layer, shape, add)
		if err != nil {
			return nil, errors.WithMessagef(err, "layer #%d (%s)", i, layer.ClassName)
		}
	}
	return specs, nil
}

type addWeightFn func(name string, dims ...int)

// propagate computes a layer's output shape (without batch) and registers its weights.
func propagate(layer Layer, in []int, add addWeightFn) ([]int, error) {
	switch layer.ClassName {
	case "InputLayer", "Activation", "Dropout", "ReLU", "LeakyReLU", "Softmax", "SpatialDropout2D":
		return in, nil
	case "Dense":
		return dense(layer, in, add)
	case "Conv2D":
		return conv2D(layer, in, add)
	case "MaxPooling2D", "AveragePooling2D":
		return pooling2D(layer, in)
	case "GlobalAveragePooling2D", "GlobalMaxPooling2D":
		if len(in) != 3 {
			return nil, errors.Errorf("expected rank 3 input, got %v", in)
		}
		return []int{in[2]}, nil
	case "Flatten":
		n := 1
		for _, d := range in {
			if d == UnknownDim {
				return nil, errors.Wrapf(ErrUnknownDimension, "cannot flatten %v", in)
			}
			n *= d
		}
		return []int{n}, nil
	case "Reshape":
		return reshape(layer, in)
	case "BatchNormalization":
		return batchNorm(layer, in, add)
	default:
		return nil, errors.Wrapf(ErrUnsupportedLayer, "%q", layer.ClassName)
	}
}

func lastDim(in []int) (int, error) {
	if len(in) == 0 {
		return 0, errors.Errorf("expected at least rank 1 input, got %v", in)
	}
	d := in[len(in)-1]
	if d == UnknownDim {
		return 0, errors.Wrapf(ErrUnknownDimension, "last dimension of %v", in)
	}
	return d, nil
}

func dense(layer Layer, in []int, add addWeightFn) ([]int, error) {
	inDim, err := lastDim(in)
	if err != nil {
		return nil, err
	}
	units, ok, err := layer.Units()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ErrMissingUnitsConfig, "Dense layer without units")
	}
	useBias, err := layer.boolParam("use_bias", true)
	if err != nil {
		return nil, err
	}
	add("kernel", inDim, units)
	if useBias {
		add("bias", units)
	}
	out := append([]int{}, in[:len(in)-1]...)
	return append(out, units), nil
}

func checkChannelsLast(layer Layer) error {
	format, ok, err := layer.stringParam("data_format")
	if err != nil {
		return err
	}
	if ok && format != "channels_last" {
		return errors.Wrapf(ErrUnsupportedLayer, "data_format %q", format)
	}
	return nil
}

// windowOutput computes the spatial output size of a convolution or pooling window.
func windowOutput(size, window, stride int, padding string) (int, error) {
	if size == UnknownDim {
		return UnknownDim, nil
	}
	switch padding {
	case "valid", "":
		if size < window {
			return 0, errors.Errorf("window %d larger than input %d", window, size)
		}
		return (size-window)/stride + 1, nil
	case "same":
		return (size + stride - 1) / stride, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedLayer, "padding %q", padding)
	}
}

func conv2D(layer Layer, in []int, add addWeightFn) ([]int, error) {
	if err := checkChannelsLast(layer); err != nil {
		return nil, err
	}
	if len(in) != 3 {
		return nil, errors.Errorf("expected (height, width, channels) input, got %v", in)
	}
	channels, err := lastDim(in)
	if err != nil {
		return nil, err
	}
	filters, ok, err := layer.intParam("filters")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ErrMalformedArchitecture, "Conv2D layer without filters")
	}
	kernel, ok, err := layer.pairParam("kernel_size")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ErrMalformedArchitecture, "Conv2D layer without kernel_size")
	}
	strides, ok, err := layer.pairParam("strides")
	if err != nil {
		return nil, err
	}
	if !ok {
		strides = [2]int{1, 1}
	}
	padding, _, err := layer.stringParam("padding")
	if err != nil {
		return nil, err
	}
	useBias, err := layer.boolParam("use_bias", true)
	if err != nil {
		return nil, err
	}

	add("kernel", kernel[0], kernel[1], channels, filters)
	if useBias {
		add("bias", filters)
	}

	h, err := windowOutput(in[0], kernel[0], strides[0], padding)
	if err != nil {
		return nil, err
	}
	w, err := windowOutput(in[1], kernel[1], strides[1], padding)
	if err != nil {
		return nil, err
	}
	return []int{h, w, filters}, nil
}

func pooling2D(layer Layer, in []int) ([]int, error) {
	if err := checkChannelsLast(layer); err != nil {
		return nil, err
	}
	if len(in) != 3 {
		return nil, errors.Errorf("expected (height, width, channels) input, got %v", in)
	}
	pool, ok, err := layer.pairParam("pool_size")
	if err != nil {
		return nil, err
	}
	if !ok {
		pool = [2]int{2, 2}
	}
	strides, ok, err := layer.pairParam("strides")
	if err != nil {
		return nil, err
	}
	if !ok {
		strides = pool
	}
	padding, _, err := layer.stringParam("padding")
	if err != nil {
		return nil, err
	}
	h, err := windowOutput(in[0], pool[0], strides[0], padding)
	if err != nil {
		return nil, err
	}
	w, err := windowOutput(in[1], pool[1], strides[1], padding)
	if err != nil {
		return nil, err
	}
	return []int{h, w, in[2]}, nil
}

func reshape(layer Layer, in []int) ([]int, error) {
	target, ok, err := layer.intsParam("target_shape")
	if err != nil {
		return nil, err
	}
	if !ok || len(target) == 0 {
		return nil, errors.Wrap(ErrMalformedArchitecture, "Reshape layer without target_shape")
	}

	// At most one -1, standing for whatever the remaining elements make up.
	out := append([]int(nil), target...)
	inferred, known := -1, 1
	for i, d := range out {
		switch {
		case d == -1 && inferred < 0:
			inferred = i
		case d <= 0:
			return nil, errors.Wrapf(ErrMalformedArchitecture, "Reshape target_shape %v", target)
		default:
			known *= d
		}
	}

	inSize := 1
	for _, d := range in {
		if d == UnknownDim {
			return out, nil
		}
		inSize *= d
	}
	if inferred >= 0 {
		if inSize%known != 0 {
			return nil, errors.Wrapf(ErrMalformedArchitecture, "cannot reshape %v (%d elements) to %v",
				in, inSize, target)
		}
		out[inferred] = inSize / known
		known = inSize
	}
	if inSize != known {
		return nil, errors.Wrapf(ErrMalformedArchitecture, "cannot reshape %v (%d elements) to %v (%d elements)",
			in, inSize, target, known)
	}
	return out, nil
}

func batchNorm(layer Layer, in []int, add addWeightFn) ([]int, error) {
	axis := -1
	if vs, ok, err := layer.intsParam("axis"); err == nil && ok && len(vs) == 1 {
		axis = vs[0]
	} else if v, ok, err := layer.intParam("axis"); err != nil {
		return nil, err
	} else if ok {
		axis = v
	}
	if axis < 0 {
		axis += len(in) + 1 // axis counts the batch dimension
	}
	if axis < 1 || axis > len(in) {
		return nil, errors.Errorf("axis out of range for input %v", in)
	}
	channels := in[axis-1]
	if channels == UnknownDim {
		return nil, errors.Wrapf(ErrUnknownDimension, "normalized axis of %v", in)
	}

	scale, err := layer.boolParam("scale", true)
	if err != nil {
		return nil, err
	}
	center, err := layer.boolParam("center", true)
	if err != nil {
		return nil, err
	}
	if scale {
		add("gamma", channels)
	}
	if center {
		add("beta", channels)
	}
	add("moving_mean", channels)
	add("moving_variance", channels)
	return in, nil
}
