package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	programAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrOnCurve indicates a derived address has a private key, and so cannot
	// be used as a program address.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")

	// ErrNoViableBump indicates every bump seed produced an on curve address.
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
)

var programHashCtor = sha256.New

// IsOnCurve reports whether key decodes to a point on the ed25519 curve.
// Only keys on the curve can sign, so program addresses are always off it.
//
// The standard library keeps its edwards25519 point type internal, so this
// relies on an exported copy of the same decompression.
func IsOnCurve(key ed25519.PublicKey) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}

	var raw [ed25519.PublicKeySize]byte
	copy(raw[:], key)

	var A edwards25519.ExtendedGroupElement
	return A.FromBytes(&raw)
}

// CreateProgramAddress hashes seeds under program into an address that can
// only be signed for by the program.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if err := validateSeeds(seeds); err != nil {
		return nil, err
	}
	if err := validateKey(program); err != nil {
		return nil, errors.Wrap(err, "program")
	}

	h := programHashCtor()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write(program)
	h.Write([]byte(programAddressMarker))

	pub := ed25519.PublicKey(h.Sum(nil)[:ed25519.PublicKeySize])
	if IsOnCurve(pub) {
		return nil, ErrOnCurve
	}
	return pub, nil
}

// FindProgramAddress searches bump seeds from 255 down for the first off
// curve address, returning it along with the bump.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	if len(seeds) >= maxSeeds {
		return nil, 0, ErrTooManySeeds
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}

		pub, err := CreateProgramAddress(program, withBump...)
		if err == nil {
			return pub, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoViableBump
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > maxSeeds {
		return ErrTooManySeeds
	}
	for i, s := range seeds {
		if len(s) > maxSeedLength {
			return errors.Wrapf(ErrMaxSeedLengthExceeded, "seed[%d] is %d bytes", i, len(s))
		}
	}
	return nil
}
