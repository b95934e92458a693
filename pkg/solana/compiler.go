package solana

import (
	"bytes"
	"crypto/ed25519"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

// Compile compiles instructions into a legacy message using LegacyPolicy.
func Compile(payer ed25519.PublicKey, bh Blockhash, instructions ...Instruction) (Message, error) {
	return LegacyPolicy.Compile(payer, bh, instructions...)
}

// MustCompile is like Compile, but panics on error.
func MustCompile(payer ed25519.PublicKey, bh Blockhash, instructions ...Instruction) Message {
	m, err := Compile(payer, bh, instructions...)
	if err != nil {
		panic(err)
	}
	return m
}

// Compile compiles instructions into a message paid for by payer. The
// returned message owns copies of all keys and data, so instructions may be
// reused by the caller.
func (p Policy) Compile(payer ed25519.PublicKey, bh Blockhash, instructions ...Instruction) (Message, error) {
	accounts, header, err := p.Canonicalize(payer, instructions)
	if err != nil {
		return Message{}, err
	}

	m := Message{
		Header:          header,
		Accounts:        make([]ed25519.PublicKey, len(accounts)),
		RecentBlockhash: bh,
	}
	for i, account := range accounts {
		m.Accounts[i] = copyKey(account.PublicKey)
	}

	// Generate the compiled instruction, which uses indices instead
	// of raw account keys.
	m.Instructions = make([]CompiledInstruction, len(instructions))
	for i, ixn := range instructions {
		c, err := compileInstruction(m.Accounts, ixn)
		if err != nil {
			return Message{}, errors.Wrapf(err, "instruction[%d]", i)
		}
		m.Instructions[i] = c
	}

	return m, nil
}

// Canonicalize produces the deduplicated, ordered account list for a set of
// instructions, along with the header describing it.
//
// The payer is always the first account and is always a writable signer. The
// remaining accounts are ordered signers before non-signers, then writable
// before read-only, then by the policy's KeyOrder. Program ids are included
// as read-only non-signers unless another reference upgrades them.
func (p Policy) Canonicalize(payer ed25519.PublicKey, instructions []Instruction) ([]AccountMeta, Header, error) {
	if err := validateKey(payer); err != nil {
		return nil, Header{}, errors.Wrap(err, "fee payer")
	}

	if len(instructions) == 0 {
		logrus.StandardLogger().WithFields(logrus.Fields{
			"type":   "solana/Policy",
			"policy": p.Name,
		}).Warn("compiling message without instructions")
	}

	var flattened []AccountMeta
	for i, ixn := range instructions {
		for j, account := range ixn.Accounts {
			if err := validateKey(account.PublicKey); err != nil {
				return nil, Header{}, errors.Wrapf(err, "instruction[%d] account[%d]", i, j)
			}
			flattened = append(flattened, account)
		}
	}

	var programs []ed25519.PublicKey
	for i, ixn := range instructions {
		if err := validateKey(ixn.Program); err != nil {
			return nil, Header{}, errors.Wrapf(err, "instruction[%d] program", i)
		}
		if indexOf(programs, ixn.Program) < 0 {
			programs = append(programs, ixn.Program)
		}
	}
	for _, program := range programs {
		flattened = append(flattened, AccountMeta{PublicKey: program})
	}

	accounts := filterUnique(flattened)
	sort.Stable(NewSortableAccountMeta(accounts, p.KeyOrder))

	// Pin the payer to the front as a writable signer. Removing an entry
	// keeps the remainder sorted, so the signer partition stays contiguous.
	ordered := make([]AccountMeta, 0, len(accounts)+1)
	ordered = append(ordered, AccountMeta{
		PublicKey:  payer,
		IsSigner:   true,
		IsWritable: true,
	})
	for _, account := range accounts {
		if bytes.Equal(account.PublicKey, payer) {
			continue
		}
		ordered = append(ordered, account)
	}

	if len(ordered) > p.maxAccounts() {
		return nil, Header{}, errors.Wrapf(ErrTooManyAccounts, "%d accounts exceeds %d", len(ordered), p.maxAccounts())
	}

	var numSigners, numReadonlySigned, numReadonly int
	for _, account := range ordered {
		if account.IsSigner {
			numSigners++

			if !account.IsWritable {
				numReadonlySigned++
			}
		} else if !account.IsWritable {
			numReadonly++
		}
	}
	if numSigners > MaxSignatures {
		return nil, Header{}, errors.Wrapf(ErrTooManyAccounts, "%d signers exceeds %d", numSigners, MaxSignatures)
	}

	header := Header{
		NumSignatures:     byte(numSigners),
		NumReadonlySigned: byte(numReadonlySigned),
		NumReadOnly:       byte(numReadonly),
	}

	return ordered, header, nil
}

func compileInstruction(accounts []ed25519.PublicKey, ixn Instruction) (CompiledInstruction, error) {
	programIndex := indexOf(accounts, ixn.Program)
	if programIndex < 0 {
		return CompiledInstruction{}, errors.Wrap(ErrUnresolvedAccountIndex, "program")
	}

	c := CompiledInstruction{
		ProgramIndex: byte(programIndex),
		Accounts:     make([]byte, len(ixn.Accounts)),
		Data:         append([]byte{}, ixn.Data...),
	}
	for i, a := range ixn.Accounts {
		index := indexOf(accounts, a.PublicKey)
		if index < 0 {
			return CompiledInstruction{}, errors.Wrapf(ErrUnresolvedAccountIndex, "account[%d]", i)
		}
		c.Accounts[i] = byte(index)
	}

	return c, nil
}

// filterUnique merges entries sharing a key, keeping the first occurrence's
// position and promoting its permissions to the union of all occurrences.
func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))

	for i := range accounts {
		for j := range filtered {
			// If we've already seen the account before, then we should check to
			// see if we should promote any of the permissions.
			if bytes.Equal(accounts[i].PublicKey, filtered[j].PublicKey) {
				if accounts[i].IsSigner {
					filtered[j].IsSigner = true
				}
				if accounts[i].IsWritable {
					filtered[j].IsWritable = true
				}

				goto next
			}
		}

		filtered = append(filtered, accounts[i])
	next:
	}

	return filtered
}

func copyKey(pub ed25519.PublicKey) ed25519.PublicKey {
	return append(ed25519.PublicKey{}, pub...)
}
