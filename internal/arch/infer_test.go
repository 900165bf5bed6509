package arch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

func TestWeightShapes_CNN(t *testing.T) {
	a, err := ParseFile(filepath.Join("testdata", "mnist_cnn.json"))
	require.NoError(t, err)

	shapes, err := a.WeightShapes()
	require.NoError(t, err)
	assert.Equal(t, []tensor.Shape{
		{3, 3, 1, 8}, {8},       // conv2d_1: 26x26x8 -> pooled to 13x13x8
		{13 * 13 * 8, 32}, {32}, // dense_1
		{32}, {32}, {32}, {32},  // bn_1
		{32, 10}, {10},          // dense_2
	}, shapes)

	specs, err := a.WeightSpecs()
	require.NoError(t, err)
	assert.Equal(t, "kernel", specs[0].Name)
	assert.Equal(t, "conv2d_1", specs[0].LayerName)
	assert.Equal(t, "gamma", specs[4].Name)
	assert.Equal(t, "moving_variance", specs[7].Name)
	assert.Equal(t, 7, specs[8].LayerIndex)
}

func TestWeightShapes_Functional(t *testing.T) {
	a, err := ParseFile(filepath.Join("testdata", "functional_mlp.json"))
	require.NoError(t, err)
	assert.Equal(t, FunctionalForm, a.Form())

	shapes, err := a.WeightShapes()
	require.NoError(t, err)
	assert.Equal(t, []tensor.Shape{{784, 128}, {128}, {128, 10}}, shapes)

	classes, err := a.NumClasses()
	require.NoError(t, err)
	assert.Equal(t, 10, classes)
}

func TestWeightShapes_ConvSamePaddingAndStrides(t *testing.T) {
	a, err := Parse([]byte(`[
		{"class_name":"Conv2D","config":{"batch_input_shape":[null,32,32,3],"filters":16,"kernel_size":3,"strides":2,"padding":"same","use_bias":false}},
		{"class_name":"GlobalAveragePooling2D","config":{}},
		{"class_name":"Dense","config":{"units":4}}
	]`))
	require.NoError(t, err)

	shapes, err := a.WeightShapes()
	require.NoError(t, err)
	assert.Equal(t, []tensor.Shape{{3, 3, 3, 16}, {16, 4}, {4}}, shapes)
}

func TestWeightShapes_Reshape(t *testing.T) {
	a, err := Parse([]byte(`[
		{"class_name":"Reshape","config":{"batch_input_shape":[null,12],"target_shape":[2,2,3]}},
		{"class_name":"Conv2D","config":{"filters":5,"kernel_size":[1,1]}},
		{"class_name":"Flatten","config":{}},
		{"class_name":"Dense","config":{"units":2}}
	]`))
	require.NoError(t, err)

	shapes, err := a.WeightShapes()
	require.NoError(t, err)
	assert.Equal(t, []tensor.Shape{{1, 1, 3, 5}, {5}, {20, 2}, {2}}, shapes)
}

func TestWeightShapes_ReshapeInferredDimension(t *testing.T) {
	a, err := Parse([]byte(`[
		{"class_name":"Reshape","config":{"batch_input_shape":[null,12],"target_shape":[2,-1,3]}},
		{"class_name":"Conv2D","config":{"filters":4,"kernel_size":2,"use_bias":false}},
		{"class_name":"Flatten","config":{}},
		{"class_name":"Dense","config":{"units":3}}
	]`))
	require.NoError(t, err)

	shapes, err := a.WeightShapes()
	require.NoError(t, err)
	// (2, 2, 3) -> Conv2D 2x2 valid -> (1, 1, 4) -> Flatten 4.
	assert.Equal(t, []tensor.Shape{{2, 2, 3, 4}, {4, 3}, {3}}, shapes)
}

func TestWeightShapes_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{
			name: "unsupported layer",
			doc:  `[{"class_name":"LSTM","config":{"batch_input_shape":[null,5,8],"units":4}}]`,
			err:  ErrUnsupportedLayer,
		},
		{
			name: "channels first",
			doc:  `[{"class_name":"Conv2D","config":{"batch_input_shape":[null,3,8,8],"filters":2,"kernel_size":3,"data_format":"channels_first"}}]`,
			err:  ErrUnsupportedLayer,
		},
		{
			name: "flatten unknown dimension",
			doc:  `[{"class_name":"InputLayer","config":{"batch_input_shape":[null,null,4]}},{"class_name":"Flatten","config":{}}]`,
			err:  ErrUnknownDimension,
		},
		{
			name: "zero stride",
			doc:  `[{"class_name":"Conv2D","config":{"batch_input_shape":[null,8,8,3],"filters":2,"kernel_size":3,"strides":0}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "zero stride in pair",
			doc:  `[{"class_name":"Conv2D","config":{"batch_input_shape":[null,8,8,3],"filters":2,"kernel_size":3,"strides":[0,1]}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "zero kernel",
			doc:  `[{"class_name":"Conv2D","config":{"batch_input_shape":[null,8,8,3],"filters":2,"kernel_size":0}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "negative kernel",
			doc:  `[{"class_name":"Conv2D","config":{"batch_input_shape":[null,8,8,3],"filters":2,"kernel_size":[3,-3]}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "negative pool size",
			doc:  `[{"class_name":"MaxPooling2D","config":{"batch_input_shape":[null,8,8,3],"pool_size":[-1,2]}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "pooling zero stride",
			doc:  `[{"class_name":"AveragePooling2D","config":{"batch_input_shape":[null,8,8,3],"strides":0}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "reshape count mismatch",
			doc:  `[{"class_name":"Reshape","config":{"batch_input_shape":[null,12],"target_shape":[5,2]}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "reshape two inferred dimensions",
			doc:  `[{"class_name":"Reshape","config":{"batch_input_shape":[null,12],"target_shape":[-1,-1,3]}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "reshape inferred dimension does not divide",
			doc:  `[{"class_name":"Reshape","config":{"batch_input_shape":[null,12],"target_shape":[5,-1]}}]`,
			err:  ErrMalformedArchitecture,
		},
		{
			name: "missing input shape",
			doc:  `[{"class_name":"Dense","config":{"units":4}}]`,
			err:  ErrMissingInputShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = a.WeightShapes()
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
