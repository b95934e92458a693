package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

// KeyOrder selects the string form used to break ties between accounts with
// the same signer and writable status.
type KeyOrder uint8

const (
	// KeyOrderBase58 compares the base58 address of each key. This is the
	// ordering produced by the reference web3 clients.
	KeyOrderBase58 KeyOrder = iota

	// KeyOrderRaw compares the raw key bytes.
	KeyOrderRaw
)

// KeyString returns the comparable string form of pub under the order.
func (o KeyOrder) KeyString(pub ed25519.PublicKey) string {
	switch o {
	case KeyOrderRaw:
		return string(pub)
	default:
		return base58.Encode(pub)
	}
}

func (o KeyOrder) String() string {
	switch o {
	case KeyOrderBase58:
		return "base58"
	case KeyOrderRaw:
		return "raw"
	}
	return "unknown"
}

// KeyOrderFromString parses the output of KeyOrder.String.
func KeyOrderFromString(s string) (KeyOrder, error) {
	switch s {
	case "base58":
		return KeyOrderBase58, nil
	case "raw":
		return KeyOrderRaw, nil
	}
	return 0, errors.Errorf("unknown key order: %q", s)
}

// PublicKeyFromBase58 decodes a base58 address into a 32 byte key.
func PublicKeyFromBase58(s string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base58 key %q", s)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidAccountKey, "%q decodes to %d bytes", s, len(decoded))
	}
	return decoded, nil
}

// BlockhashFromBase58 decodes a base58 blockhash.
func BlockhashFromBase58(s string) (Blockhash, error) {
	var bh Blockhash
	decoded, err := base58.Decode(s)
	if err != nil {
		return bh, errors.Wrapf(err, "invalid base58 blockhash %q", s)
	}
	if len(decoded) != len(bh) {
		return bh, errors.Errorf("blockhash %q decodes to %d bytes", s, len(decoded))
	}
	copy(bh[:], decoded)
	return bh, nil
}

func (bh Blockhash) String() string {
	return base58.Encode(bh[:])
}

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func validateKey(pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return errors.Wrapf(ErrInvalidAccountKey, "length %d", len(pub))
	}
	return nil
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
