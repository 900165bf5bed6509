package arch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Forms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		form Form
	}{
		{
			name: "bare list",
			doc:  `[{"class_name": "Dense", "config": {"units": 3}}]`,
			form: SequentialForm,
		},
		{
			name: "config list",
			doc:  `{"config": [{"class_name": "Dense", "config": {"units": 3}}]}`,
			form: SequentialForm,
		},
		{
			name: "config mapping with layers",
			doc:  `{"config": {"name": "m", "layers": [{"class_name": "Dense", "config": {"units": 3}}]}}`,
			form: FunctionalForm,
		},
		{
			name: "mapping with layers",
			doc:  `{"layers": [{"class_name": "Dense", "config": {"units": 3}}]}`,
			form: FunctionalForm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.form, a.Form())
			require.Equal(t, 1, a.NumLayers())
			assert.Equal(t, "Dense", a.Layers()[0].ClassName)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	docs := map[string]string{
		"empty":                  ``,
		"scalar":                 `42`,
		"invalid json":           `{"config": [`,
		"no config":              `{"class_name": "Sequential"}`,
		"config is a string":     `{"config": "layers"}`,
		"config without layers":  `{"config": {"name": "m"}}`,
		"layers is not a list":   `{"config": {"layers": {"class_name": "Dense"}}}`,
		"no layers":              `{"config": []}`,
		"layer without class":    `[{"config": {}}]`,
		"layer without config":   `[{"class_name": "Dense"}]`,
		"layer config not a map": `[{"class_name": "Dense", "config": [1, 2]}]`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrMalformedArchitecture)
		})
	}
}

func TestNumClasses(t *testing.T) {
	a, err := Parse([]byte(`{"config": {"layers": [{"class_name":"Dense","config":{"units":10}}]}}`))
	require.NoError(t, err)
	n, err := a.NumClasses()
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// The last layer declaring units wins, even if followed by an activation.
	a, err = Parse([]byte(`[
		{"class_name":"Dense","config":{"units":512}},
		{"class_name":"Activation","config":{"activation":"relu"}},
		{"class_name":"Dense","config":{"units":7}},
		{"class_name":"Activation","config":{"activation":"softmax"}}
	]`))
	require.NoError(t, err)
	n, err = a.NumClasses()
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestNumClasses_MissingUnits(t *testing.T) {
	a, err := Parse([]byte(`[{"class_name":"Flatten","config":{}},{"class_name":"Activation","config":{}}]`))
	require.NoError(t, err)
	_, err = a.NumClasses()
	assert.ErrorIs(t, err, ErrMissingUnitsConfig)

	a, err = Parse([]byte(`[{"class_name":"Dense","config":{"units":"ten"}}]`))
	require.NoError(t, err)
	_, err = a.NumClasses()
	assert.ErrorIs(t, err, ErrMalformedArchitecture)
}

func TestInputShape(t *testing.T) {
	a, err := Parse([]byte(`{"config":[{"class_name":"InputLayer","config":{"batch_input_shape":[null,224,224,3]}}]}`))
	require.NoError(t, err)
	shape, err := a.InputShape()
	require.NoError(t, err)
	assert.Equal(t, []int{224, 224, 3}, shape)

	a, err = Parse([]byte(`[{"class_name":"InputLayer","config":{"batch_input_shape":[null,null,16]}}]`))
	require.NoError(t, err)
	shape, err = a.InputShape()
	require.NoError(t, err)
	assert.Equal(t, []int{UnknownDim, 16}, shape)
}

func TestInputShape_Missing(t *testing.T) {
	for _, doc := range []string{
		`[{"class_name":"Dense","config":{"units":3}}]`,
		`[{"class_name":"Dense","config":{"units":3,"batch_input_shape":null}}]`,
		`[{"class_name":"Dense","config":{"units":3,"batch_input_shape":"big"}}]`,
	} {
		a, err := Parse([]byte(doc))
		require.NoError(t, err)
		_, err = a.InputShape()
		assert.ErrorIs(t, err, ErrMissingInputShape, doc)
	}
}

func TestDescribe(t *testing.T) {
	a, err := Parse([]byte(`[
		{"class_name":"Flatten","config":{}},
		{"class_name":"Dense","config":{"units":10}},
		{"class_name":"Activation","config":{}}
	]`))
	require.NoError(t, err)

	want := "Model arch layers:\n" +
		"Flatten\n" +
		"   |\n   V\n" +
		"Dense[10]\n" +
		"   |\n   V\n" +
		"Activation\n"
	assert.Equal(t, want, a.Describe())
}

func TestParseFile(t *testing.T) {
	a, err := ParseFile(filepath.Join("testdata", "mnist_cnn.json"))
	require.NoError(t, err)
	assert.Equal(t, SequentialForm, a.Form())
	assert.Equal(t, 9, a.NumLayers())
	assert.Equal(t, "conv2d_1", a.Layers()[0].Name())

	_, err = ParseFile(filepath.Join("testdata", "does_not_exist.json"))
	assert.Error(t, err)
}
