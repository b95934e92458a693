package system

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana"
	layout "github.com/code-payments/message-compiler/pkg/solana/binary"
)

const (
	commandCreateAccount uint32 = iota
	// nolint:varcheck,deadcode,unused
	commandAssign
	commandTransfer
	// nolint:varcheck,deadcode,unused
	commandCreateAccountWithSeed
	commandAdvanceNonceAccount
	commandWithdrawNonceAccount
	commandInitializeNonceAccount
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L58-L72
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE, SIGNER] New account
	e := layout.NewEncoder(4 + 2*8 + ed25519.PublicKeySize)
	e.PutUint32(commandCreateAccount)
	e.PutUint64(lamports)
	e.PutUint64(size)
	e.PutKey32(owner)

	return solana.NewInstruction(
		ProgramKey,
		e.Bytes(),
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}

type DecompiledCreateAccount struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey

	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

func DecompileCreateAccount(m solana.Message, index int) (*DecompiledCreateAccount, error) {
	i, err := decompile(m, index, commandCreateAccount, 2, 52)
	if err != nil {
		return nil, err
	}

	d := layout.NewDecoder(i.Data[4:])
	v := &DecompiledCreateAccount{
		Funder:   m.Accounts[i.Accounts[0]],
		Address:  m.Accounts[i.Accounts[1]],
		Lamports: d.GetUint64(),
		Size:     d.GetUint64(),
		Owner:    d.GetKey32(),
	}
	return v, d.Err()
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L81-L86
func Transfer(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Recipient account
	e := layout.NewEncoder(4 + 8)
	e.PutUint32(commandTransfer)
	e.PutUint64(lamports)

	return solana.NewInstruction(
		ProgramKey,
		e.Bytes(),
		solana.NewAccountMeta(from, true),
		solana.NewAccountMeta(to, false),
	)
}

type DecompiledTransfer struct {
	From     ed25519.PublicKey
	To       ed25519.PublicKey
	Lamports uint64
}

func DecompileTransfer(m solana.Message, index int) (*DecompiledTransfer, error) {
	i, err := decompile(m, index, commandTransfer, 2, 12)
	if err != nil {
		return nil, err
	}

	return &DecompiledTransfer{
		From:     m.Accounts[i.Accounts[0]],
		To:       m.Accounts[i.Accounts[1]],
		Lamports: binary.LittleEndian.Uint64(i.Data[4:]),
	}, nil
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L113-L119
func AdvanceNonce(nonce, authority ed25519.PublicKey) solana.Instruction {
	// # Account references
	//   0. [WRITE] Nonce account
	//   1. [] RecentBlockhashes sysvar
	//   2. [SIGNER] Nonce authority
	e := layout.NewEncoder(4)
	e.PutUint32(commandAdvanceNonceAccount)

	return solana.NewInstruction(
		ProgramKey,
		e.Bytes(),
		solana.NewAccountMeta(nonce, false),
		solana.NewReadonlyAccountMeta(RecentBlockhashesSysVar, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

type DecompiledAdvanceNonce struct {
	Nonce     ed25519.PublicKey
	Authority ed25519.PublicKey
}

func DecompileAdvanceNonce(m solana.Message, index int) (*DecompiledAdvanceNonce, error) {
	i, err := decompile(m, index, commandAdvanceNonceAccount, 3, 4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(RecentBlockhashesSysVar, m.Accounts[i.Accounts[1]]) {
		return nil, errors.Errorf("invalid RecentBlockhashesSysVar")
	}

	return &DecompiledAdvanceNonce{
		Nonce:     m.Accounts[i.Accounts[0]],
		Authority: m.Accounts[i.Accounts[2]],
	}, nil
}

// WithdrawNonce returns an instruction to withdraw funds from a nonce account
//
// The `uint64` parameter is the lamports to withdraw, which must leave the
// account balance above the rent exempt reserve or at zero.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L131
func WithdrawNonce(nonce, auth, recipient ed25519.PublicKey, lamports uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE] Nonce account
	//   1. [WRITE] Recipient account
	//   2. [] RecentBlockhashes sysvar
	//   3. [] Rent sysvar
	//   4. [SIGNER] Nonce authority
	e := layout.NewEncoder(4 + 8)
	e.PutUint32(commandWithdrawNonceAccount)
	e.PutUint64(lamports)

	return solana.NewInstruction(
		ProgramKey,
		e.Bytes(),
		solana.NewAccountMeta(nonce, false),
		solana.NewAccountMeta(recipient, false),
		solana.NewReadonlyAccountMeta(RecentBlockhashesSysVar, false),
		solana.NewReadonlyAccountMeta(RentSysVar, false),
		solana.NewReadonlyAccountMeta(auth, true),
	)
}

// InitializeNonce returns an instruction to change the state of an
// Uninitalized nonce account to Initialized, setting the nonce value.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L146
func InitializeNonce(nonce, auth ed25519.PublicKey) solana.Instruction {
	// # Account references
	//   0. [WRITE] Nonce account
	//   1. [] RecentBlockhashes sysvar
	//   2. [] Rent sysvar
	e := layout.NewEncoder(4 + ed25519.PublicKeySize)
	e.PutUint32(commandInitializeNonceAccount)
	e.PutKey32(auth)

	return solana.NewInstruction(
		ProgramKey,
		e.Bytes(),
		solana.NewAccountMeta(nonce, false),
		solana.NewReadonlyAccountMeta(RecentBlockhashesSysVar, false),
		solana.NewReadonlyAccountMeta(RentSysVar, false),
	)
}

// decompile locates instruction index of m and checks that it is the system
// command with the expected shape.
func decompile(m solana.Message, index int, command uint32, numAccounts, dataLen int) (solana.CompiledInstruction, error) {
	if index < 0 || index >= len(m.Instructions) {
		return solana.CompiledInstruction{}, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if int(i.ProgramIndex) >= len(m.Accounts) || !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return solana.CompiledInstruction{}, solana.ErrIncorrectProgram
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], command)
	if !bytes.HasPrefix(i.Data, prefix[:]) {
		return solana.CompiledInstruction{}, solana.ErrIncorrectInstruction
	}

	if len(i.Accounts) != numAccounts {
		return solana.CompiledInstruction{}, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	for _, account := range i.Accounts {
		if int(account) >= len(m.Accounts) {
			return solana.CompiledInstruction{}, solana.ErrInvalidAccountIndex
		}
	}
	if len(i.Data) != dataLen {
		return solana.CompiledInstruction{}, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	return i, nil
}
