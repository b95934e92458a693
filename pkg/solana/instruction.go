package solana

import (
	"crypto/ed25519"
)

// AccountMeta represents the account information required
// for building transactions.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

// SortableAccountMeta is a sortable []AccountMeta based on the solana transaction
// account sorting rules:
//
//  1. Signers before non-signers.
//  2. Writable accounts before read-only accounts.
//  3. Ascending key, compared using a KeyOrder.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
type SortableAccountMeta struct {
	Metas []AccountMeta
	Order KeyOrder

	// Cached key strings, parallel to Metas.
	keys []string
}

// NewSortableAccountMeta returns a sort.Interface over metas.
func NewSortableAccountMeta(metas []AccountMeta, order KeyOrder) *SortableAccountMeta {
	keys := make([]string, len(metas))
	for i, m := range metas {
		keys[i] = order.KeyString(m.PublicKey)
	}
	return &SortableAccountMeta{
		Metas: metas,
		Order: order,
		keys:  keys,
	}
}

// Len is the number of elements in the collection.
func (s *SortableAccountMeta) Len() int {
	return len(s.Metas)
}

// Less reports whether the element with
// index i should sort before the element with index j.
func (s *SortableAccountMeta) Less(i int, j int) bool {
	if s.Metas[i].IsSigner != s.Metas[j].IsSigner {
		return s.Metas[i].IsSigner
	}
	if s.Metas[i].IsWritable != s.Metas[j].IsWritable {
		return s.Metas[i].IsWritable
	}

	return s.keys[i] < s.keys[j]
}

// Swap swaps the elements with indexes i and j.
func (s *SortableAccountMeta) Swap(i int, j int) {
	s.Metas[i], s.Metas[j] = s.Metas[j], s.Metas[i]
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
}

// Instruction represents a transaction instruction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction represents an instruction that has been compiled into a transaction.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
