// Package crypto declares the Signer/Verifier capabilities the engine
// depends on (§6) and ships an ed25519-backed implementation of both.
package crypto

import "github.com/blockberries/hashvote/types"

// Signer produces a detached signature over a digest and reports the
// address it signs for. The engine never inspects private key
// material directly; it only ever calls through this interface.
type Signer interface {
	Address() types.Address
	Sign(digest types.Hash) (types.Signature, error)
}

// Verifier recovers the address that produced a signature over a
// digest. Ed25519 has no public-key-recovery primitive, so concrete
// verifiers are expected to check the signature against a registered
// set of known keys rather than truly "recovering" one out of thin
// air; see KeyBook.
type Verifier interface {
	Recover(digest types.Hash, sig types.Signature) (types.Address, error)
}
