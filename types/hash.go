// Package types defines the wire-level data model for the consensus
// engine: scopes, proposals, votes, session status, and the canonical
// hashing scheme used to derive proposal_hash and vote_id.
package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash is a 32-byte content hash produced by HashBytes.
type Hash [32]byte

// ZeroHash is the hash used to mark "no parent" in a vote chain root.
var ZeroHash = Hash{}

// HashBytes returns the SHA-256 digest of b.
func HashBytes(b []byte) Hash {
	return sha256.Sum256(b)
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Bytes returns a copy of the hash's underlying bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}
