package solana

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana/shortvec"
)

// PartialMessage is a message encoded for a signer that only knows a prefix
// of the account list. Keys past the prefix are zeroed in Payload and must be
// supplied again when the broadcastable message is reassembled.
type PartialMessage struct {
	Payload []byte

	// HasHeader reports whether Payload starts with the three header bytes.
	HasHeader bool

	// NumKnownAccounts is the account count encoded in Payload.
	NumKnownAccounts int

	// NumUnRequiredAccounts is the number of zeroed account keys following
	// the known prefix. It is not part of Payload.
	NumUnRequiredAccounts int
}

// Reconstruct rebuilds the full mode encoding of the message Payload was
// produced from. The elided keys must be provided in account list order.
func (p *PartialMessage) Reconstruct(header Header, elided []ed25519.PublicKey) ([]byte, error) {
	if len(elided) != p.NumUnRequiredAccounts {
		return nil, errors.Wrapf(ErrElidedAccountMismatch, "got %d keys, expected %d", len(elided), p.NumUnRequiredAccounts)
	}
	for i, key := range elided {
		if err := validateKey(key); err != nil {
			return nil, errors.Wrapf(err, "elided account[%d]", i)
		}
	}

	offset := 0
	if p.HasHeader {
		offset += headerSize
	}
	if len(p.Payload) < offset {
		return nil, errors.Wrap(ErrTruncatedMessage, "failed to read header")
	}

	numKnown, consumed, err := shortvec.Decode(p.Payload[offset:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read account len")
	}
	if numKnown != p.NumKnownAccounts {
		return nil, errors.Wrapf(ErrInvalidKnownAccounts, "payload encodes %d, expected %d", numKnown, p.NumKnownAccounts)
	}
	offset += consumed

	knownEnd := offset + numKnown*ed25519.PublicKeySize
	elidedEnd := knownEnd + p.NumUnRequiredAccounts*ed25519.PublicKeySize
	if len(p.Payload) < elidedEnd {
		return nil, errors.Wrap(ErrTruncatedMessage, "failed to read accounts")
	}

	total := numKnown + len(elided)
	out := make([]byte, 0, headerSize+shortvec.EncodedLen(total)+len(p.Payload)-offset)
	out = append(out, header.NumSignatures, header.NumReadonlySigned, header.NumReadOnly)
	out = append(out, shortvec.Encode(total)...)
	out = append(out, p.Payload[offset:knownEnd]...)
	for _, key := range elided {
		out = append(out, key...)
	}
	out = append(out, p.Payload[elidedEnd:]...)

	return out, nil
}
