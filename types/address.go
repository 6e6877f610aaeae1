package types

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrInvalidAddressLength is returned by AddressFromBytes when the input
// is not exactly 20 bytes.
var ErrInvalidAddressLength = errors.New("types: address must be 20 bytes")

// Address identifies a voter. Concrete Signer/Verifier implementations
// derive it from a public key; the engine treats it as an opaque,
// comparable identifier.
type Address [20]byte

// ZeroAddress is the address used to mean "no owner"/"unset".
var ZeroAddress = Address{}

// AddressFromBytes builds an Address from a 20-byte slice.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != len(a) {
		return a, fmt.Errorf("%w: got %d", ErrInvalidAddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Bytes returns a copy of the address's underlying bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, len(a))
	copy(out, a[:])
	return out
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Signature is a detached signature over a digest. Its length and
// encoding are defined by the Signer/Verifier implementation in use
// (ed25519 signatures are 64 bytes).
type Signature []byte
