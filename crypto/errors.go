package crypto

import "errors"

var (
	// ErrUnknownSigner is returned by KeyBook.Recover when no
	// registered public key produces a valid signature over the digest.
	ErrUnknownSigner = errors.New("crypto: signature does not match any registered key")
	// ErrInvalidPrivateKey is returned when constructing a Signer from
	// key material of the wrong size.
	ErrInvalidPrivateKey = errors.New("crypto: invalid ed25519 private key")
)
