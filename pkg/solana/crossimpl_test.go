package solana_test

import (
	"crypto/ed25519"
	"testing"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/message-compiler/pkg/solana"
	"github.com/code-payments/message-compiler/pkg/testutil"
)

func TestCrossImpl_DecodesCompiledMessage(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 8)
	payer := keys[0]

	m, err := solana.Compile(
		payer,
		solana.Blockhash{4, 2},
		solana.NewInstruction(
			keys[1],
			[]byte{1, 2, 3},
			solana.NewAccountMeta(keys[2], true),
			solana.NewReadonlyAccountMeta(keys[3], false),
			solana.NewAccountMeta(keys[4], false),
		),
		solana.NewInstruction(
			keys[5],
			nil,
			solana.NewReadonlyAccountMeta(keys[6], true),
			solana.NewReadonlyAccountMeta(keys[3], false),
			solana.NewAccountMeta(keys[7], false),
		),
	)
	require.NoError(t, err)

	encoded, err := m.Marshal()
	require.NoError(t, err)

	var decoded solanago.Message
	require.NoError(t, decoded.UnmarshalWithDecoder(bin.NewBinDecoder(encoded)))

	assert.EqualValues(t, m.Header.NumSignatures, decoded.Header.NumRequiredSignatures)
	assert.EqualValues(t, m.Header.NumReadonlySigned, decoded.Header.NumReadonlySignedAccounts)
	assert.EqualValues(t, m.Header.NumReadOnly, decoded.Header.NumReadonlyUnsignedAccounts)

	require.Len(t, decoded.AccountKeys, len(m.Accounts))
	for i, account := range m.Accounts {
		assert.Equal(t, base58.Encode(account), decoded.AccountKeys[i].String())
	}
	assert.Equal(t, m.RecentBlockhash.String(), decoded.RecentBlockhash.String())

	require.Len(t, decoded.Instructions, len(m.Instructions))
	for i, ixn := range m.Instructions {
		assert.EqualValues(t, ixn.ProgramIndex, decoded.Instructions[i].ProgramIDIndex)
		require.Len(t, decoded.Instructions[i].Accounts, len(ixn.Accounts))
		for j, index := range ixn.Accounts {
			assert.EqualValues(t, index, decoded.Instructions[i].Accounts[j])
		}
		assert.Equal(t, ixn.Data, []byte(decoded.Instructions[i].Data))
	}

	reencoded, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestCrossImpl_DecodesForeignMessage(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)

	foreign := solanago.Message{
		Header: solanago.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlySignedAccounts:   0,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys: solanago.PublicKeySlice{
			toForeignKey(keys[0]),
			toForeignKey(keys[1]),
			toForeignKey(keys[2]),
		},
		RecentBlockhash: solanago.Hash(toForeignKey(keys[3])),
		Instructions: []solanago.CompiledInstruction{
			{
				ProgramIDIndex: 2,
				Accounts:       []uint16{0, 1},
				Data:           solanago.Base58{7, 7, 7},
			},
		},
	}
	encoded, err := foreign.MarshalBinary()
	require.NoError(t, err)

	var m solana.Message
	require.NoError(t, m.Unmarshal(encoded))

	assert.Equal(t, solana.Header{NumSignatures: 1, NumReadOnly: 1}, m.Header)
	assert.Equal(t, keys[:3], m.Accounts)
	assert.Equal(t, base58.Encode(keys[3]), m.RecentBlockhash.String())
	require.Len(t, m.Instructions, 1)
	assert.Equal(t, solana.CompiledInstruction{ProgramIndex: 2, Accounts: []byte{0, 1}, Data: []byte{7, 7, 7}}, m.Instructions[0])
}

func toForeignKey(pub ed25519.PublicKey) solanago.PublicKey {
	return solanago.PublicKeyFromBytes(pub)
}
