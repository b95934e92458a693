package testutil

import (
	"crypto/ed25519"
	"sort"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeypairs(t *testing.T, n int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, n)
	for i := 0; i < n; i++ {
		keys[i] = GenerateSolanaKeypair(t)
	}
	return keys
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

// SortKeysByBase58 sorts keys in place by their base58 address, which is
// the tie break order used for message account lists.
func SortKeysByBase58(keys []ed25519.PublicKey) []ed25519.PublicKey {
	sort.Slice(keys, func(i, j int) bool {
		return base58.Encode(keys[i]) < base58.Encode(keys[j])
	})
	return keys
}

// SortKeypairsByBase58 is SortKeysByBase58 for private keys.
func SortKeypairsByBase58(keys []ed25519.PrivateKey) []ed25519.PrivateKey {
	sort.Slice(keys, func(i, j int) bool {
		return base58.Encode(keys[i].Public().(ed25519.PublicKey)) < base58.Encode(keys[j].Public().(ed25519.PublicKey))
	})
	return keys
}
