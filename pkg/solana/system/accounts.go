package system

import (
	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana"
	"github.com/code-payments/message-compiler/pkg/solana/binary"
)

type NonceVersion uint32

const (
	NonceAccountSize = 80
)

const (
	NonceVersion0 NonceVersion = iota
	NonceVersion1
)

var (
	ErrInvalidAccountSize    = errors.New("invalid nonce account size")
	ErrInvalidAccountVersion = errors.New("invalid nonce account version")
)

// NonceAccount is the state of a durable nonce account. Its Blockhash is used
// as the recent blockhash of messages that advance the nonce.
//
// https://github.com/solana-labs/solana/blob/da00b39f4f92fb16417bd2d8bd218a04a34527b8/sdk/program/src/nonce/state/current.rs#L8
type NonceAccount struct {
	Version              uint32
	State                uint32
	Authority            []byte
	Blockhash            solana.Blockhash
	LamportsPerSignature uint64
}

func (obj NonceAccount) Marshal() []byte {
	e := binary.NewEncoder(NonceAccountSize)
	e.PutUint32(obj.Version)
	e.PutUint32(obj.State)
	e.PutKey32(obj.Authority)
	e.PutKey32(obj.Blockhash[:])
	e.PutUint64(obj.LamportsPerSignature)
	return e.Bytes()
}

func (obj *NonceAccount) Unmarshal(data []byte) error {
	if len(data) != NonceAccountSize {
		return ErrInvalidAccountSize
	}

	d := binary.NewDecoder(data)
	obj.Version = d.GetUint32()
	obj.State = d.GetUint32()
	obj.Authority = d.GetKey32()
	copy(obj.Blockhash[:], d.GetKey32())
	obj.LamportsPerSignature = d.GetUint64()
	if err := d.Err(); err != nil {
		return err
	}

	if NonceVersion(obj.Version) != NonceVersion1 {
		return ErrInvalidAccountVersion
	}

	return nil
}
