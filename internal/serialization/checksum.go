package serialization

import (
	"crypto/sha256"

	"github.com/pkg/errors"
)

// ComputeChecksum returns the SHA-256 of an envelope payload.
func ComputeChecksum(payload []byte) [ChecksumSize]byte {
	return sha256.Sum256(payload)
}

// ValidateChecksum reports ErrChecksumMismatch when the digest recomputed from a payload
// differs from the one stored after it.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed != stored {
		return errors.Wrapf(ErrChecksumMismatch, "payload digest %x, stored %x", computed[:4], stored[:4])
	}
	return nil
}
