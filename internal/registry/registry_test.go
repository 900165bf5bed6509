package registry

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/arch"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

func TestNew(t *testing.T) {
	r, err := New(tensor.Shape{2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 9, r.TotalElements())
	assert.Equal(t, 0, r.Offset(0))
	assert.Equal(t, 6, r.Offset(1))
	assert.Equal(t, []tensor.Shape{{2, 3}, {3}}, r.Shapes())

	_, err = New()
	assert.ErrorIs(t, err, serialization.ErrInvalidShape)

	_, err = New(tensor.Shape{2, 0})
	assert.ErrorIs(t, err, serialization.ErrInvalidShape)
}

func TestRegistryIsImmutable(t *testing.T) {
	input := tensor.Shape{4, 4}
	r, err := New(input)
	require.NoError(t, err)

	input[0] = 100
	assert.Equal(t, tensor.Shape{4, 4}, r.Shape(0))

	shapes := r.Shapes()
	shapes[0][1] = 100
	assert.Equal(t, tensor.Shape{4, 4}, r.Shape(0))
	assert.Equal(t, 16, r.TotalElements())
}

func TestEncodeDecode(t *testing.T) {
	r, err := New(tensor.Shape{2, 2}, tensor.Shape{2})
	require.NoError(t, err)

	ws := tensor.WeightSet{
		tensor.MustNewArray(tensor.Shape{2, 2}, []float32{1, 2, 3, 4}),
		tensor.MustNewArray(tensor.Shape{2}, []float32{5, 6}),
	}
	buf, err := r.Encode(ws)
	require.NoError(t, err)

	decoded, err := r.Decode(buf)
	require.NoError(t, err)
	assert.True(t, ws.Equal(decoded))

	_, err = r.Decode(serialization.Float32sToBytes([]float32{1, 2, 3}))
	assert.ErrorIs(t, err, serialization.ErrShapeMismatch)

	buf, err = r.Encode(nil)
	assert.NoError(t, err)
	assert.Nil(t, buf)
}

func TestCheck(t *testing.T) {
	r, err := New(tensor.Shape{2, 2}, tensor.Shape{2})
	require.NoError(t, err)

	swapped := tensor.WeightSet{
		tensor.MustNewArray(tensor.Shape{4}, []float32{1, 2, 3, 4}),
		tensor.MustNewArray(tensor.Shape{2}, []float32{5, 6}),
	}
	assert.ErrorIs(t, r.Check(swapped), serialization.ErrShapeMismatch)

	short := tensor.WeightSet{tensor.MustNewArray(tensor.Shape{2, 2}, []float32{1, 2, 3, 4})}
	assert.ErrorIs(t, r.Check(short), serialization.ErrShapeMismatch)

	_, err = r.Encode(short)
	assert.Error(t, err)
}

func TestFromArchitecture(t *testing.T) {
	a, err := arch.ParseFile(filepath.Join("..", "arch", "testdata", "functional_mlp.json"))
	require.NoError(t, err)

	r, err := FromArchitecture(a)
	require.NoError(t, err)
	assert.Equal(t, []tensor.Shape{{784, 128}, {128}, {128, 10}}, r.Shapes())
	assert.Equal(t, 784*128+128+128*10, r.TotalElements())
}

func TestConcurrentDecode(t *testing.T) {
	r, err := New(tensor.Shape{8, 8}, tensor.Shape{8})
	require.NoError(t, err)
	flat := make([]float32, r.TotalElements())
	for i := range flat {
		flat[i] = float32(i)
	}
	buf := serialization.Float32sToBytes(flat)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, err := r.Decode(buf)
			assert.NoError(t, err)
			assert.Equal(t, float32(63), ws[0].At(7, 7))
			assert.Equal(t, float32(71), ws[1].At(7))
		}()
	}
	wg.Wait()
}
