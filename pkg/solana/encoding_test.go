package solana

import (
	"bytes"
	"crypto/ed25519"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/message-compiler/pkg/testutil"
)

func TestMarshal_Layout(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	a, b, p := keys[0], keys[1], keys[2]

	var bh Blockhash
	for i := range bh {
		bh[i] = byte(i)
	}

	m := MustCompile(a, bh, NewInstruction(p, []byte{0x01, 0x02}, NewAccountMeta(a, true), NewAccountMeta(b, false)))

	var expected []byte
	expected = append(expected, 1, 0, 1)
	expected = append(expected, 3)
	expected = append(expected, a...)
	expected = append(expected, b...)
	expected = append(expected, p...)
	expected = append(expected, bh[:]...)
	expected = append(expected, 1)
	expected = append(expected, 2, 2, 0, 1, 2, 0x01, 0x02)

	actual, err := m.Marshal()
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.Equal(t, len(expected), m.Size())
}

func TestMarshal_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		payer, bh, ixns := randomInstructions(t, r)

		m, err := Compile(payer, bh, ixns...)
		require.NoError(t, err)

		encoded, err := m.Marshal()
		require.NoError(t, err)
		assert.Len(t, encoded, m.Size())

		var decoded Message
		require.NoError(t, decoded.Unmarshal(encoded))
		require.Empty(t, cmp.Diff(m, decoded))

		reencoded, err := decoded.Marshal()
		require.NoError(t, err)
		assert.Equal(t, encoded, reencoded)
	}
}

func TestMarshal_EmptyMessageRoundTrip(t *testing.T) {
	payer := testutil.GenerateSolanaKeys(t, 1)[0]
	m := MustCompile(payer, Blockhash{7})

	encoded, err := m.Marshal()
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, decoded.Unmarshal(encoded))
	assert.Equal(t, m, decoded)
}

func TestMarshal_TooLarge(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	m := MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], make([]byte, MaxTransactionSize)))
	_, err := m.Marshal()
	assert.True(t, errors.Is(err, ErrMessageTooLarge))

	_, err = m.MarshalPartial(1)
	assert.True(t, errors.Is(err, ErrMessageTooLarge))

	// Exactly at the limit.
	overhead := MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], nil)).Size()
	dataLen := MaxTransactionSize - overhead - 1
	m = MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], make([]byte, dataLen)))
	require.Equal(t, MaxTransactionSize, m.Size())
	_, err = m.Marshal()
	assert.NoError(t, err)

	policy := LegacyPolicy
	policy.MaxMessageSize = MaxTransactionSize - 1
	_, err = policy.Marshal(m)
	assert.True(t, errors.Is(err, ErrMessageTooLarge))
}

func TestUnmarshal_Truncated(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)
	m := MustCompile(
		keys[0],
		Blockhash{3},
		NewInstruction(keys[1], []byte{1, 2, 3, 4}, NewAccountMeta(keys[2], false)),
		NewInstruction(keys[3], []byte{5}, NewReadonlyAccountMeta(keys[2], false)),
	)
	encoded, err := m.Marshal()
	require.NoError(t, err)

	for i := 0; i < len(encoded); i++ {
		var decoded Message
		err := decoded.Unmarshal(encoded[:i])
		require.Error(t, err, "prefix %d", i)
		assert.True(t, errors.Is(err, ErrTruncatedMessage) || errors.Is(err, ErrMalformedLength), "prefix %d: %v", i, err)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	m := MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], nil, NewAccountMeta(keys[0], true)))
	m.Instructions[0].ProgramIndex = 2
	encoded, err := m.Marshal()
	require.NoError(t, err)
	var decoded Message
	assert.True(t, errors.Is(decoded.Unmarshal(encoded), ErrInvalidAccountIndex))

	m = MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], nil, NewAccountMeta(keys[0], true)))
	m.Instructions[0].Accounts = []byte{2}
	encoded, err = m.Marshal()
	require.NoError(t, err)
	assert.True(t, errors.Is(decoded.Unmarshal(encoded), ErrInvalidAccountIndex))

	m = MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], nil))
	encoded, err = m.Marshal()
	require.NoError(t, err)
	assert.True(t, errors.Is(decoded.Unmarshal(append(encoded, 0)), ErrTrailingBytes))

	versioned := append([]byte{0x80}, encoded...)
	assert.True(t, errors.Is(decoded.Unmarshal(versioned), ErrUnsupportedVersion))

	assert.True(t, errors.Is(decoded.Unmarshal(nil), ErrTruncatedMessage))
}

func TestUnmarshal_MalformedLength(t *testing.T) {
	// Header followed by an unterminated account count.
	var decoded Message
	err := decoded.Unmarshal([]byte{1, 0, 0, 0x80})
	assert.True(t, errors.Is(err, ErrMalformedLength))
}

func TestUnmarshal_NonCanonicalLength(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	m := MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], nil))
	encoded, err := m.Marshal()
	require.NoError(t, err)
	require.EqualValues(t, 2, encoded[3])

	// Same account count, padded with a redundant continuation byte.
	padded := append([]byte{}, encoded[:3]...)
	padded = append(padded, 0x82, 0x00)
	padded = append(padded, encoded[4:]...)

	var decoded Message
	assert.True(t, errors.Is(decoded.Unmarshal(padded), ErrMalformedLength))
	require.NoError(t, decoded.Unmarshal(encoded))
}

func TestUnmarshal_DoesNotAliasInput(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	m := MustCompile(keys[0], Blockhash{}, NewInstruction(keys[1], []byte{1, 2, 3}, NewAccountMeta(keys[0], true)))
	encoded, err := m.Marshal()
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, decoded.Unmarshal(encoded))

	for i := range encoded {
		encoded[i] = 0
	}
	assert.Equal(t, m, decoded)
}

// randomInstructions generates a random, compilable instruction set drawn from
// a small key pool so duplicates are common.
func randomInstructions(t *testing.T, r *rand.Rand) (ed25519.PublicKey, Blockhash, []Instruction) {
	pool := testutil.GenerateSolanaKeys(t, 12)
	payer := pool[r.Intn(len(pool))]

	var bh Blockhash
	r.Read(bh[:])

	ixns := make([]Instruction, r.Intn(5))
	for i := range ixns {
		ixn := Instruction{
			Program: pool[r.Intn(len(pool))],
			Data:    make([]byte, r.Intn(64)),
		}
		r.Read(ixn.Data)

		for j := r.Intn(6); j > 0; j-- {
			ixn.Accounts = append(ixn.Accounts, AccountMeta{
				PublicKey:  pool[r.Intn(len(pool))],
				IsSigner:   r.Intn(2) == 0,
				IsWritable: r.Intn(2) == 0,
			})
		}

		ixns[i] = ixn
	}

	return payer, bh, ixns
}

func TestRandomInstructions_Invariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		payer, bh, ixns := randomInstructions(t, r)

		accounts, header, err := LegacyPolicy.Canonicalize(payer, ixns)
		require.NoError(t, err)

		require.True(t, bytes.Equal(payer, accounts[0].PublicKey))
		assert.True(t, accounts[0].IsSigner)
		assert.True(t, accounts[0].IsWritable)

		var signers int
		for j, account := range accounts {
			for k := j + 1; k < len(accounts); k++ {
				require.False(t, bytes.Equal(account.PublicKey, accounts[k].PublicKey))
			}
			if account.IsSigner {
				require.Equal(t, j, signers, "signers must be contiguous")
				signers++
			}
		}
		assert.EqualValues(t, signers, header.NumSignatures)

		// Any key referenced as a signer or writable must keep that status.
		for _, ixn := range ixns {
			for _, meta := range ixn.Accounts {
				for _, account := range accounts {
					if bytes.Equal(account.PublicKey, meta.PublicKey) {
						assert.True(t, account.IsSigner || !meta.IsSigner)
						assert.True(t, account.IsWritable || !meta.IsWritable)
					}
				}
			}
		}

		m, err := Compile(payer, bh, ixns...)
		require.NoError(t, err)
		for j, ixn := range ixns {
			assert.Equal(t, ixn.Program, m.Accounts[m.Instructions[j].ProgramIndex])
			for k, meta := range ixn.Accounts {
				assert.Equal(t, meta.PublicKey, m.Accounts[m.Instructions[j].Accounts[k]])
			}
		}
	}
}
