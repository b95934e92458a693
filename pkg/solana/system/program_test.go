package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/message-compiler/pkg/solana"
	"github.com/code-payments/message-compiler/pkg/testutil"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", base58.Encode(ProgramKey))
	assert.Equal(t, "SysvarRent111111111111111111111111111111111", base58.Encode(RentSysVar))
	assert.Equal(t, "SysvarRecentB1ockHashes11111111111111111111", base58.Encode(RecentBlockhashesSysVar))
}

func TestCreateAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	command := make([]byte, 4)
	lamports := make([]byte, 8)
	binary.LittleEndian.PutUint64(lamports, 12345)
	size := make([]byte, 8)
	binary.LittleEndian.PutUint64(size, 67890)

	assert.Equal(t, command, instruction.Data[0:4])
	assert.Equal(t, lamports, instruction.Data[4:12])
	assert.Equal(t, size, instruction.Data[12:20])
	assert.Equal(t, []byte(keys[2]), instruction.Data[20:52])

	decompiled, err := DecompileCreateAccount(roundTrip(t, keys[0], instruction), 0)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Funder)
	assert.Equal(t, keys[1], decompiled.Address)
	assert.Equal(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 12345, decompiled.Lamports)
	assert.EqualValues(t, 67890, decompiled.Size)
}

func TestDecompileNonCreate(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	instruction.Accounts = instruction.Accounts[:1]
	_, err := DecompileCreateAccount(roundTrip(t, keys[0], instruction), 0)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"), err)

	binary.LittleEndian.PutUint32(instruction.Data, commandTransfer)
	_, err = DecompileCreateAccount(roundTrip(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Data = make([]byte, 3)
	_, err = DecompileCreateAccount(roundTrip(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = DecompileCreateAccount(roundTrip(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = DecompileCreateAccount(roundTrip(t, keys[0], instruction), 1)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "instruction doesn't exist"))
}

func TestTransfer(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	instruction := Transfer(keys[1], keys[2], 42)
	assert.Equal(t, []byte{2, 0, 0, 0, 42, 0, 0, 0, 0, 0, 0, 0}, instruction.Data)

	m := roundTrip(t, keys[0], instruction)

	// The system program is the only read-only account.
	assert.EqualValues(t, 1, m.Header.NumReadOnly)
	assert.Equal(t, ProgramKey, m.Accounts[len(m.Accounts)-1])

	decompiled, err := DecompileTransfer(m, 0)
	require.NoError(t, err)
	assert.Equal(t, keys[1], decompiled.From)
	assert.Equal(t, keys[2], decompiled.To)
	assert.EqualValues(t, 42, decompiled.Lamports)

	_, err = DecompileCreateAccount(m, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestAdvanceNonceAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	instruction := AdvanceNonce(keys[0], keys[1])

	command := make([]byte, 4)
	binary.LittleEndian.PutUint32(command, commandAdvanceNonceAccount)
	assert.EqualValues(t, command, instruction.Data)
	assert.EqualValues(t, ProgramKey, instruction.Program)

	require.Len(t, instruction.Accounts, 3)

	assert.EqualValues(t, keys[0], instruction.Accounts[0].PublicKey)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)

	assert.EqualValues(t, RecentBlockhashesSysVar, instruction.Accounts[1].PublicKey)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.False(t, instruction.Accounts[1].IsWritable)

	assert.EqualValues(t, keys[1], instruction.Accounts[2].PublicKey)
	assert.True(t, instruction.Accounts[2].IsSigner)

	decompiled, err := DecompileAdvanceNonce(roundTrip(t, keys[0], instruction), 0)
	assert.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.Nonce)
	assert.EqualValues(t, keys[1], decompiled.Authority)

	instruction.Accounts[1].PublicKey = keys[2]
	_, err = DecompileAdvanceNonce(roundTrip(t, keys[0], instruction), 0)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid RecentBlockhashesSysVar"))

	instruction.Accounts = instruction.Accounts[:1]
	_, err = DecompileAdvanceNonce(roundTrip(t, keys[0], instruction), 0)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid number of accounts"))

	binary.LittleEndian.PutUint32(instruction.Data, commandCreateAccount)
	_, err = DecompileAdvanceNonce(roundTrip(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Data = nil
	_, err = DecompileAdvanceNonce(roundTrip(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[2]
	_, err = DecompileAdvanceNonce(roundTrip(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestDurableNonceMessage(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)
	payer, nonce, authority, recipient := keys[0], keys[1], keys[2], keys[3]

	state := NonceAccount{
		Version:              uint32(NonceVersion1),
		State:                1,
		Authority:            authority,
		Blockhash:            solana.Blockhash{1, 2, 3},
		LamportsPerSignature: 5000,
	}

	var stored NonceAccount
	require.NoError(t, stored.Unmarshal(state.Marshal()))
	assert.Equal(t, state, stored)

	m, err := solana.Compile(
		payer,
		stored.Blockhash,
		AdvanceNonce(nonce, authority),
		Transfer(payer, recipient, 1000),
	)
	require.NoError(t, err)
	assert.Equal(t, state.Blockhash, m.RecentBlockhash)

	// Payer and authority sign. The system program and sysvar are read-only.
	assert.Equal(t, solana.Header{NumSignatures: 2, NumReadonlySigned: 1, NumReadOnly: 2}, m.Header)

	advance, err := DecompileAdvanceNonce(m, 0)
	require.NoError(t, err)
	assert.Equal(t, nonce, advance.Nonce)

	transfer, err := DecompileTransfer(m, 1)
	require.NoError(t, err)
	assert.Equal(t, payer, transfer.From)
	assert.Equal(t, recipient, transfer.To)
}

func TestNonceAccount_Invalid(t *testing.T) {
	var account NonceAccount
	assert.Equal(t, ErrInvalidAccountSize, account.Unmarshal(make([]byte, NonceAccountSize-1)))
	assert.Equal(t, ErrInvalidAccountVersion, account.Unmarshal(make([]byte, NonceAccountSize)))
}

func TestInitializeAndWithdrawNonce(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	initialize := InitializeNonce(keys[0], keys[1])
	assert.EqualValues(t, commandInitializeNonceAccount, binary.LittleEndian.Uint32(initialize.Data))
	assert.Equal(t, []byte(keys[1]), initialize.Data[4:])
	require.Len(t, initialize.Accounts, 3)

	withdraw := WithdrawNonce(keys[0], keys[1], keys[2], 77)
	assert.EqualValues(t, commandWithdrawNonceAccount, binary.LittleEndian.Uint32(withdraw.Data))
	assert.EqualValues(t, 77, binary.LittleEndian.Uint64(withdraw.Data[4:]))
	require.Len(t, withdraw.Accounts, 5)
	assert.True(t, withdraw.Accounts[4].IsSigner)

	m := roundTrip(t, keys[1], initialize, withdraw)
	require.Len(t, m.Instructions, 2)
}

// roundTrip compiles instructions and decodes the encoded result.
func roundTrip(t *testing.T, payer ed25519.PublicKey, instructions ...solana.Instruction) solana.Message {
	m, err := solana.Compile(payer, solana.Blockhash{}, instructions...)
	require.NoError(t, err)

	encoded, err := m.Marshal()
	require.NoError(t, err)

	var decoded solana.Message
	require.NoError(t, decoded.Unmarshal(encoded))
	return decoded
}
