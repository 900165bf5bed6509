package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// storedDigest splits a checksummed envelope into its payload and trailing digest.
func storedDigest(t *testing.T, wrapped []byte) ([]byte, [ChecksumSize]byte) {
	t.Helper()
	require.Greater(t, len(wrapped), EnvelopeSize+ChecksumSize)
	var stored [ChecksumSize]byte
	copy(stored[:], wrapped[len(wrapped)-ChecksumSize:])
	return wrapped[EnvelopeSize : len(wrapped)-ChecksumSize], stored
}

func TestChecksum_CoversEnvelopePayload(t *testing.T) {
	raw := Combine(12, []float32{0.25, -3, 7.5, 1e-3})

	for _, opts := range []WrapOptions{
		{ElementType: tensor.Float32, Checksum: true},
		{ElementType: tensor.Float16, Checksum: true, Counter: true},
	} {
		t.Run(opts.ElementType.String(), func(t *testing.T) {
			wrapped, err := Wrap(raw, opts)
			require.NoError(t, err)
			payload, stored := storedDigest(t, wrapped)
			assert.Equal(t, ComputeChecksum(payload), stored)
			assert.NoError(t, ValidateChecksum(ComputeChecksum(payload), stored))
		})
	}
}

func TestChecksum_DetectsFlippedPayloadByte(t *testing.T) {
	wrapped, err := Wrap(Combine(3, []float32{1, 2, 3}), WrapOptions{Checksum: true})
	require.NoError(t, err)

	// Every payload byte is covered, the counter included.
	for _, pos := range []int{EnvelopeSize, EnvelopeSize + ElementSize + 1, len(wrapped) - ChecksumSize - 1} {
		corrupted := append([]byte(nil), wrapped...)
		corrupted[pos] ^= 0x01

		payload, stored := storedDigest(t, corrupted)
		assert.ErrorIs(t, ValidateChecksum(ComputeChecksum(payload), stored), ErrChecksumMismatch)
		_, err := Unwrap(corrupted)
		assert.ErrorIs(t, err, ErrChecksumMismatch, "byte %d", pos)
	}
}

func TestChecksum_DetectsTamperedDigest(t *testing.T) {
	wrapped, err := Wrap(Float32sToBytes([]float32{4, 5}), WrapOptions{Checksum: true})
	require.NoError(t, err)
	wrapped[len(wrapped)-1] ^= 0xff

	_, err = Unwrap(wrapped)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
