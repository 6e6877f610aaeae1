package crypto

import (
	stded25519 "crypto/ed25519"
	"crypto/sha256"
	"sync"

	"github.com/blockberries/hashvote/types"
)

// AddressFromPublicKey derives the 20-byte address used throughout the
// engine from an ed25519 public key: the low 20 bytes of its SHA-256
// digest, mirroring the teacher's account-from-pubkey derivation.
func AddressFromPublicKey(pub stded25519.PublicKey) types.Address {
	sum := sha256.Sum256(pub)
	var addr types.Address
	copy(addr[:], sum[len(sum)-len(addr):])
	return addr
}

// Ed25519Signer is a Signer backed by a single ed25519 private key.
type Ed25519Signer struct {
	priv    stded25519.PrivateKey
	address types.Address
}

// NewEd25519Signer wraps priv, deriving the signer's address from its
// public half.
func NewEd25519Signer(priv stded25519.PrivateKey) (*Ed25519Signer, error) {
	if len(priv) != stded25519.PrivateKeySize {
		return nil, ErrInvalidPrivateKey
	}
	pub, ok := priv.Public().(stded25519.PublicKey)
	if !ok {
		return nil, ErrInvalidPrivateKey
	}
	return &Ed25519Signer{priv: priv, address: AddressFromPublicKey(pub)}, nil
}

func (s *Ed25519Signer) Address() types.Address {
	return s.address
}

func (s *Ed25519Signer) Sign(digest types.Hash) (types.Signature, error) {
	sig := stded25519.Sign(s.priv, digest[:])
	return types.Signature(sig), nil
}

// KeyBook is a Verifier backed by a registry of known public keys. It
// "recovers" an address by checking the signature against every
// registered key, mirroring the way the teacher's ValidatorSet looks
// up a validator's key by scanning its member set rather than
// indexing by signature.
type KeyBook struct {
	mu   sync.RWMutex
	keys map[types.Address]stded25519.PublicKey
}

func NewKeyBook() *KeyBook {
	return &KeyBook{keys: make(map[types.Address]stded25519.PublicKey)}
}

// Register associates addr with pub so future Recover calls can
// attribute signatures from that key to addr.
func (k *KeyBook) Register(addr types.Address, pub stded25519.PublicKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[addr] = pub
}

func (k *KeyBook) Recover(digest types.Hash, sig types.Signature) (types.Address, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for addr, pub := range k.keys {
		if stded25519.Verify(pub, digest[:], sig) {
			return addr, nil
		}
	}
	return types.ZeroAddress, ErrUnknownSigner
}
