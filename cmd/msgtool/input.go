package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana"
)

// messageInput is the JSON form of a message to compile. Keys and the
// blockhash are base58, instruction data is base64.
type messageInput struct {
	Payer           string             `json:"payer"`
	RecentBlockhash string             `json:"recent_blockhash"`
	Instructions    []instructionInput `json:"instructions"`
}

type instructionInput struct {
	Program  string         `json:"program"`
	Accounts []accountInput `json:"accounts"`
	Data     string         `json:"data"`
}

type accountInput struct {
	PublicKey  string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// partialOutput is the JSON form of a partial encoding, carrying what is
// needed to reconstruct the full message later.
type partialOutput struct {
	Payload               string `json:"payload"`
	HasHeader             bool   `json:"has_header"`
	Header                []byte `json:"header"`
	NumKnownAccounts      int    `json:"num_known_accounts"`
	NumUnRequiredAccounts int    `json:"num_unrequired_accounts"`
}

func readInput(path string) ([]byte, error) {
	if len(path) == 0 || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func parseMessageInput(b []byte) (ed25519.PublicKey, solana.Blockhash, []solana.Instruction, error) {
	var input messageInput
	if err := json.Unmarshal(b, &input); err != nil {
		return nil, solana.Blockhash{}, nil, errors.Wrap(err, "invalid message json")
	}

	payer, err := solana.PublicKeyFromBase58(input.Payer)
	if err != nil {
		return nil, solana.Blockhash{}, nil, errors.Wrap(err, "payer")
	}

	var bh solana.Blockhash
	if len(input.RecentBlockhash) > 0 {
		bh, err = solana.BlockhashFromBase58(input.RecentBlockhash)
		if err != nil {
			return nil, solana.Blockhash{}, nil, err
		}
	}

	instructions := make([]solana.Instruction, len(input.Instructions))
	for i, ixn := range input.Instructions {
		program, err := solana.PublicKeyFromBase58(ixn.Program)
		if err != nil {
			return nil, solana.Blockhash{}, nil, errors.Wrapf(err, "instruction[%d] program", i)
		}

		data, err := base64.StdEncoding.DecodeString(ixn.Data)
		if err != nil {
			return nil, solana.Blockhash{}, nil, errors.Wrapf(err, "instruction[%d] data", i)
		}

		accounts := make([]solana.AccountMeta, len(ixn.Accounts))
		for j, account := range ixn.Accounts {
			key, err := solana.PublicKeyFromBase58(account.PublicKey)
			if err != nil {
				return nil, solana.Blockhash{}, nil, errors.Wrapf(err, "instruction[%d] account[%d]", i, j)
			}
			accounts[j] = solana.AccountMeta{
				PublicKey:  key,
				IsSigner:   account.IsSigner,
				IsWritable: account.IsWritable,
			}
		}

		instructions[i] = solana.NewInstruction(program, data, accounts...)
	}

	return payer, bh, instructions, nil
}

func toPartialOutput(m solana.Message, partial *solana.PartialMessage) partialOutput {
	return partialOutput{
		Payload:               base64.StdEncoding.EncodeToString(partial.Payload),
		HasHeader:             partial.HasHeader,
		Header:                []byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly},
		NumKnownAccounts:      partial.NumKnownAccounts,
		NumUnRequiredAccounts: partial.NumUnRequiredAccounts,
	}
}

func fromPartialOutput(b []byte) (*solana.PartialMessage, solana.Header, error) {
	var output partialOutput
	if err := json.Unmarshal(b, &output); err != nil {
		return nil, solana.Header{}, errors.Wrap(err, "invalid partial message json")
	}
	if len(output.Header) != 3 {
		return nil, solana.Header{}, errors.Errorf("header must be 3 bytes, got %d", len(output.Header))
	}

	payload, err := base64.StdEncoding.DecodeString(output.Payload)
	if err != nil {
		return nil, solana.Header{}, errors.Wrap(err, "invalid payload")
	}

	partial := &solana.PartialMessage{
		Payload:               payload,
		HasHeader:             output.HasHeader,
		NumKnownAccounts:      output.NumKnownAccounts,
		NumUnRequiredAccounts: output.NumUnRequiredAccounts,
	}
	header := solana.Header{
		NumSignatures:     output.Header[0],
		NumReadonlySigned: output.Header[1],
		NumReadOnly:       output.Header[2],
	}
	return partial, header, nil
}
