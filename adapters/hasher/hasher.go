// Package hasher provides content hashing implementations.
package hasher

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/artpar/cloudrest/ports"
)

// Blake2b hashes content with BLAKE2b-256.
type Blake2b struct{}

// Hash returns the hex encoded BLAKE2b-256 digest of data.
func (Blake2b) Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ ports.ContentHasher = Blake2b{}

// Fake returns a fixed digest (for testing).
type Fake struct {
	Digest string
}

// Hash returns the configured digest.
func (f Fake) Hash([]byte) string {
	return f.Digest
}

var _ ports.ContentHasher = Fake{}
