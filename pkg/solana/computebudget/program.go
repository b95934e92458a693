package compute_budget

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana"
	"github.com/code-payments/message-compiler/pkg/solana/binary"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

const (
	// nolint:varcheck,deadcode,unused
	commandRequestUnits uint8 = iota
	// nolint:varcheck,deadcode,unused
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	e := binary.NewEncoder(1 + 4)
	e.PutUint8(commandSetComputeUnitLimit)
	e.PutUint32(computeUnitLimit)

	return solana.NewInstruction(ProgramKey, e.Bytes())
}

// SetComputeUnitPrice sets the priority fee, in micro-lamports per compute
// unit.
func SetComputeUnitPrice(computeUnitPrice uint64) solana.Instruction {
	e := binary.NewEncoder(1 + 8)
	e.PutUint8(commandSetComputeUnitPrice)
	e.PutUint64(computeUnitPrice)

	return solana.NewInstruction(ProgramKey, e.Bytes())
}

func DecompileSetComputeUnitLimit(m solana.Message, index int) (uint32, error) {
	d, err := decompile(m, index, commandSetComputeUnitLimit, 4)
	if err != nil {
		return 0, err
	}
	return d.GetUint32(), d.Err()
}

func DecompileSetComputeUnitPrice(m solana.Message, index int) (uint64, error) {
	d, err := decompile(m, index, commandSetComputeUnitPrice, 8)
	if err != nil {
		return 0, err
	}
	return d.GetUint64(), d.Err()
}

// decompile returns a decoder positioned after the command byte of
// instruction index.
func decompile(m solana.Message, index int, command uint8, argLen int) (*binary.Decoder, error) {
	if index < 0 || index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if int(i.ProgramIndex) >= len(m.Accounts) || !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || i.Data[0] != command {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Data) != 1+argLen {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	d := binary.NewDecoder(i.Data)
	d.GetUint8()
	return d, nil
}
