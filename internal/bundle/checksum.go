package bundle

import (
	"crypto/sha256"
	"encoding/hex"
)

// computeChecksum returns the hex-encoded SHA-256 digest of data.
func computeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// validateChecksum compares a computed digest against the stored one.
func validateChecksum(computed, stored string) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
