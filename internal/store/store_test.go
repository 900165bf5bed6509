package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
)

func TestNew(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	s, err := New(root)
	require.NoError(t, err)
	assert.Equal(t, root, s.Root())
	assert.DirExists(t, root)

	_, err = New("hdfs://master:9000/tmp")
	assert.ErrorIs(t, err, ErrRemoteRoot)
	_, err = New("")
	assert.ErrorIs(t, err, ErrRemoteRoot)
}

func TestSaveLoad(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	state := serialization.Combine(3, []float32{0.5, -1, 2})
	path, err := s.Save("run", 1, state)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "run", "epoch-0001.state"), path)

	loaded, err := s.Load("run", 1)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	// Overwrites are atomic replacements.
	state2 := serialization.Combine(5, []float32{1, 1, 1})
	_, err = s.Save("run", 1, state2)
	require.NoError(t, err)
	loaded, err = s.Load("run", 1)
	require.NoError(t, err)
	assert.Equal(t, state2, loaded)

	_, err = s.Load("run", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAbsentState(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("run", 1, nil)
	require.NoError(t, err)
	loaded, err := s.Load("run", 1)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestEpochsAndLatest(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	epochs, err := s.Epochs("run")
	require.NoError(t, err)
	assert.Empty(t, epochs)
	_, _, err = s.Latest("run")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, epoch := range []int{3, 1, 12, 2} {
		_, err := s.Save("run", epoch, serialization.Combine(float32(epoch), []float32{1}))
		require.NoError(t, err)
	}
	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "run", "notes.txt"), []byte("x"), 0o600))

	epochs, err = s.Epochs("run")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 12}, epochs)

	epoch, state, err := s.Latest("run")
	require.NoError(t, err)
	assert.Equal(t, 12, epoch)
	st, err := serialization.Split(state)
	require.NoError(t, err)
	assert.Equal(t, float32(12), st.Count)
}

func TestMappedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	want := serialization.Float32sToBytes([]float32{1, 2, 3, 4})
	require.NoError(t, os.WriteFile(path, want, 0o600))

	m, err := OpenMapped(path)
	require.NoError(t, err)
	assert.Equal(t, len(want), m.Len())
	assert.Equal(t, want, m.Bytes())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.NoError(t, m.Close(), "double close is a no-op")

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
