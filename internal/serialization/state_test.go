package serialization

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

func TestCombineSplit_Example(t *testing.T) {
	buf := Combine(3.0, []float32{0.1, 0.2, 0.3})
	require.Len(t, buf, 4*ElementSize)

	values, err := BytesToFloat32s(buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{3.0, 0.1, 0.2, 0.3}, values)

	state, err := Split(buf)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, float32(3.0), state.Count)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, state.Weights)
}

func TestCombineSplit_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		count := float32(rng.Intn(100000))
		weights := make([]float32, 1+rng.Intn(1000))
		for i := range weights {
			weights[i] = float32(rng.NormFloat64())
		}

		state, err := Split(Combine(count, weights))
		require.NoError(t, err)
		assert.Equal(t, count, state.Count)
		assert.Equal(t, weights, state.Weights)
	}
}

func TestCombineND(t *testing.T) {
	weights := tensor.WeightSet{
		tensor.MustNewArray(tensor.Shape{2, 2}, []float32{1, 2, 3, 4}),
		tensor.MustNewArray(tensor.Shape{1}, []float32{5}),
	}

	state, err := Split(CombineND(12, weights))
	require.NoError(t, err)
	assert.Equal(t, float32(12), state.Count)
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, state.Weights)

	restored, err := state.WeightSet(weights.Shapes())
	require.NoError(t, err)
	assert.True(t, weights.Equal(restored))

	assert.Nil(t, CombineND(1, nil))
}

func TestStateAbsentInput(t *testing.T) {
	assert.Nil(t, Combine(1, nil))

	state, err := Split(nil)
	assert.NoError(t, err)
	assert.Nil(t, state)

	state, err = Split([]byte{})
	assert.NoError(t, err)
	assert.Nil(t, state)

	flat, err := ExtractFlatWeights(nil)
	assert.NoError(t, err)
	assert.Nil(t, flat)

	var s *State
	assert.Nil(t, s.Bytes())
	ws, err := s.WeightSet([]tensor.Shape{{1}})
	assert.NoError(t, err)
	assert.Nil(t, ws)
}

func TestSplit_CorruptBuffer(t *testing.T) {
	_, err := Split([]byte{0, 0, 0, 0, 1, 2})
	assert.ErrorIs(t, err, ErrTruncatedBuffer)
}

func TestSplit_CounterOnly(t *testing.T) {
	state, err := Split(Combine(5, []float32{}))
	require.NoError(t, err)
	assert.Equal(t, float32(5), state.Count)
	assert.Empty(t, state.Weights)
}

func TestExtractFlatWeights(t *testing.T) {
	flat, err := ExtractFlatWeights(Combine(42, []float32{1.5, -2.5}))
	require.NoError(t, err)
	assert.Equal(t, Float32sToBytes([]float32{1.5, -2.5}), flat)

	decoded, err := DecodeND(flat, []tensor.Shape{{2}})
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2.5}, decoded[0].Data())
}

func TestStateWeightSet_Mismatch(t *testing.T) {
	state := &State{Count: 1, Weights: []float32{1, 2, 3}}
	_, err := state.WeightSet([]tensor.Shape{{2, 2}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
