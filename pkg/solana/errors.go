package solana

import (
	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana/shortvec"
)

var (
	// ErrMalformedLength indicates a compact length ran off the end of the input
	// or was not minimally encoded.
	ErrMalformedLength = shortvec.ErrMalformedLength

	// ErrTruncatedMessage indicates the input ended in the middle of a message.
	ErrTruncatedMessage = errors.New("truncated message")

	// ErrUnresolvedAccountIndex indicates an instruction references a key that
	// is missing from the compiled account list. This is a compiler defect,
	// never a user input error.
	ErrUnresolvedAccountIndex = errors.New("unresolved account index")

	// ErrMessageTooLarge indicates the encoded message exceeds the policy's
	// maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	ErrInvalidAccountKey     = errors.New("invalid account key")
	ErrTooManyAccounts       = errors.New("too many accounts")
	ErrInvalidAccountIndex   = errors.New("account index out of range")
	ErrUnsupportedVersion    = errors.New("versioned messages not supported")
	ErrTrailingBytes         = errors.New("trailing bytes after message")
	ErrInvalidKnownAccounts  = errors.New("invalid number of known accounts")
	ErrElidedAccountMismatch = errors.New("elided account count mismatch")
	ErrUnknownSigner         = errors.New("account is not a required signer")

	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)
