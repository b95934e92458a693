package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana/shortvec"
)

// Transaction pairs a message with the signatures of its required signers.
// Signatures are produced elsewhere; the zero signature marks a missing one.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction returns an unsigned transaction for m.
func NewTransaction(m Message) Transaction {
	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the fee payer's signature, which identifies the transaction.
func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

// SetSignature records sig for the signer pub.
func (t *Transaction) SetSignature(pub ed25519.PublicKey, sig []byte) error {
	if len(sig) != ed25519.SignatureSize {
		return errors.Errorf("invalid signature length: %d", len(sig))
	}

	index := indexOf(t.Message.Accounts, pub)
	if index < 0 || index >= len(t.Signatures) {
		return errors.Wrapf(ErrUnknownSigner, "%s", base58.Encode(pub))
	}

	copy(t.Signatures[index][:], sig)
	return nil
}

// IsSigned reports whether every required signature is present.
func (t *Transaction) IsSigned() bool {
	var empty Signature
	for _, s := range t.Signatures {
		if s == empty {
			return false
		}
	}
	return len(t.Signatures) > 0
}

func (t Transaction) Marshal() ([]byte, error) {
	message, err := t.Message.Marshal()
	if err != nil {
		return nil, err
	}

	b := bytes.NewBuffer(nil)

	// Signatures
	if _, err := shortvec.EncodeLen(b, len(t.Signatures)); err != nil {
		return nil, err
	}
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}

	if b.Len()+len(message) > MaxTransactionSize {
		return nil, errors.Wrapf(ErrMessageTooLarge, "transaction of %d bytes exceeds %d", b.Len()+len(message), MaxTransactionSize)
	}

	// Message
	_, _ = b.Write(message)

	return b.Bytes(), nil
}

func (t *Transaction) Unmarshal(b []byte) error {
	d := &decoder{buf: b}

	sigLen, err := d.readLen()
	if err != nil {
		return errors.Wrap(err, "failed to read signature length")
	}
	if sigLen > d.remaining()/ed25519.SignatureSize {
		return errors.Wrapf(ErrTruncatedMessage, "%d signatures in %d bytes", sigLen, d.remaining())
	}

	t.Signatures = make([]Signature, sigLen)
	for i := 0; i < sigLen; i++ {
		raw, err := d.read(ed25519.SignatureSize)
		if err != nil {
			return errors.Wrapf(err, "failed to read signature at %d", i)
		}
		copy(t.Signatures[i][:], raw)
	}

	return (&t.Message).Unmarshal(b[d.offset:])
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", i, s.String()))
	}
	sb.WriteString("Message:\n")
	sb.WriteString(t.Message.String())
	return sb.String()
}

func (m Message) String() string {
	var sb strings.Builder
	sb.WriteString("  Header:\n")
	sb.WriteString(fmt.Sprintf("    NumSignatures: %d\n", m.Header.NumSignatures))
	sb.WriteString(fmt.Sprintf("    NumReadOnly: %d\n", m.Header.NumReadOnly))
	sb.WriteString(fmt.Sprintf("    NumReadOnlySigned: %d\n", m.Header.NumReadonlySigned))
	sb.WriteString("  Accounts:\n")
	for i, a := range m.Accounts {
		sb.WriteString(fmt.Sprintf("    %d: %s\n", i, base58.Encode(a)))
	}
	sb.WriteString(fmt.Sprintf("  RecentBlockhash: %s\n", m.RecentBlockhash.String()))
	sb.WriteString("  Instructions:\n")
	for i := range m.Instructions {
		sb.WriteString(fmt.Sprintf("    %d:\n", i))
		sb.WriteString(fmt.Sprintf("      ProgramIndex: %d\n", m.Instructions[i].ProgramIndex))
		sb.WriteString(fmt.Sprintf("      Accounts: %v\n", m.Instructions[i].Accounts))
		sb.WriteString(fmt.Sprintf("      Data: %v\n", m.Instructions[i].Data))
	}
	return sb.String()
}
