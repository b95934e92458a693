package solana

import (
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232

	// MaxAccounts is bounded by the one byte account indices in compiled
	// instructions.
	MaxAccounts = 256

	// MaxSignatures keeps the high bit of the first header byte clear, which
	// otherwise marks a versioned message.
	MaxSignatures = 127
)

// Policy captures the per-variant knobs of message compilation and encoding.
type Policy struct {
	Name string

	// KeyOrder breaks ties between accounts of the same signer and writable
	// status.
	KeyOrder KeyOrder

	// MaxAccounts caps the size of the compiled account list. Values above
	// the package level MaxAccounts are clamped.
	MaxAccounts int

	// MaxMessageSize caps the encoded message, in either mode.
	MaxMessageSize int

	// PartialHeader keeps the three header bytes in partial encodings.
	PartialHeader bool
}

var (
	// LegacyPolicy produces legacy messages as accepted by the network.
	LegacyPolicy = Policy{
		Name:           "legacy",
		KeyOrder:       KeyOrderBase58,
		MaxAccounts:    MaxAccounts,
		MaxMessageSize: MaxTransactionSize,
	}

	// DevicePolicy targets hardware signers that echo back a fixed shape
	// buffer. The signature and its shortvec prefix must fit in the same
	// packet, so less room is left for the message.
	DevicePolicy = Policy{
		Name:           "device",
		KeyOrder:       KeyOrderBase58,
		MaxAccounts:    MaxAccounts,
		MaxMessageSize: MaxTransactionSize - 1 - len(Signature{}),
	}
)

// PolicyByName returns one of the predefined policies.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case LegacyPolicy.Name:
		return LegacyPolicy, nil
	case DevicePolicy.Name:
		return DevicePolicy, nil
	}
	return Policy{}, errors.Errorf("unknown policy: %q", name)
}

func (p Policy) maxAccounts() int {
	if p.MaxAccounts <= 0 || p.MaxAccounts > MaxAccounts {
		return MaxAccounts
	}
	return p.MaxAccounts
}

func (p Policy) maxMessageSize() int {
	if p.MaxMessageSize <= 0 {
		return MaxTransactionSize
	}
	return p.MaxMessageSize
}
