package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/message-compiler/pkg/solana/shortvec"
)

const headerSize = 3

// Marshal encodes the message in full mode using LegacyPolicy's size limit.
func (m Message) Marshal() ([]byte, error) {
	return LegacyPolicy.Marshal(m)
}

// MarshalPartial encodes the message in partial mode using DevicePolicy.
func (m Message) MarshalPartial(numKnown int) (*PartialMessage, error) {
	return DevicePolicy.MarshalPartial(m, numKnown)
}

// Size returns the full mode encoded size of the message.
func (m Message) Size() int {
	return m.size(true, len(m.Accounts))
}

// Marshal encodes the message in full mode:
//
//	[header(3)][shortvec keys][keys(32 each)][blockhash(32)][shortvec instructions]{instruction}*
//
// where each instruction is
//
//	[program index(1)][shortvec accounts][account indices(1 each)][shortvec data][data]
func (p Policy) Marshal(m Message) ([]byte, error) {
	size := m.size(true, len(m.Accounts))
	if size > p.maxMessageSize() {
		return nil, errors.Wrapf(ErrMessageTooLarge, "%d bytes exceeds %d", size, p.maxMessageSize())
	}

	b := bytes.NewBuffer(make([]byte, 0, size))
	m.writeTo(b, true, len(m.Accounts))
	return b.Bytes(), nil
}

// MarshalPartial encodes the message for a signer that only knows the first
// numKnown accounts. The remaining account keys are written as zero blocks
// and the account count field covers only the known prefix. Instruction
// indices still refer to the full account list.
func (p Policy) MarshalPartial(m Message, numKnown int) (*PartialMessage, error) {
	if numKnown < 0 || numKnown > len(m.Accounts) {
		return nil, errors.Wrapf(ErrInvalidKnownAccounts, "%d of %d", numKnown, len(m.Accounts))
	}

	size := m.size(p.PartialHeader, numKnown)
	if size > p.maxMessageSize() {
		return nil, errors.Wrapf(ErrMessageTooLarge, "%d bytes exceeds %d", size, p.maxMessageSize())
	}

	b := bytes.NewBuffer(make([]byte, 0, size))
	m.writeTo(b, p.PartialHeader, numKnown)

	return &PartialMessage{
		Payload:               b.Bytes(),
		HasHeader:             p.PartialHeader,
		NumKnownAccounts:      numKnown,
		NumUnRequiredAccounts: len(m.Accounts) - numKnown,
	}, nil
}

func (m Message) size(withHeader bool, numKnown int) int {
	var size int
	if withHeader {
		size += headerSize
	}

	size += shortvec.EncodedLen(numKnown)
	size += len(m.Accounts) * ed25519.PublicKeySize
	size += len(m.RecentBlockhash)

	size += shortvec.EncodedLen(len(m.Instructions))
	for _, i := range m.Instructions {
		size += 1
		size += shortvec.EncodedLen(len(i.Accounts)) + len(i.Accounts)
		size += shortvec.EncodedLen(len(i.Data)) + len(i.Data)
	}

	return size
}

func (m Message) writeTo(b *bytes.Buffer, withHeader bool, numKnown int) {
	// Header
	if withHeader {
		_ = b.WriteByte(m.Header.NumSignatures)
		_ = b.WriteByte(m.Header.NumReadonlySigned)
		_ = b.WriteByte(m.Header.NumReadOnly)
	}

	// Accounts
	_, _ = b.Write(shortvec.Encode(numKnown))
	for i, a := range m.Accounts {
		if i < numKnown {
			_, _ = b.Write(a)
		} else {
			_, _ = b.Write(make([]byte, ed25519.PublicKeySize))
		}
	}

	// Recent Blockhash
	_, _ = b.Write(m.RecentBlockhash[:])

	// Instructions
	_, _ = b.Write(shortvec.Encode(len(m.Instructions)))
	for _, i := range m.Instructions {
		_ = b.WriteByte(i.ProgramIndex)

		// Accounts
		_, _ = b.Write(shortvec.Encode(len(i.Accounts)))
		_, _ = b.Write(i.Accounts)

		// Data
		_, _ = b.Write(shortvec.Encode(len(i.Data)))
		_, _ = b.Write(i.Data)
	}
}

// Unmarshal decodes a full mode message. The input must contain exactly one
// message.
func (m *Message) Unmarshal(b []byte) error {
	d := &decoder{buf: b}
	if err := m.decode(d); err != nil {
		return err
	}
	if d.remaining() > 0 {
		return errors.Wrapf(ErrTrailingBytes, "%d bytes", d.remaining())
	}
	return nil
}

func (m *Message) decode(d *decoder) (err error) {
	if d.remaining() > 0 && d.peek() > 127 {
		return ErrUnsupportedVersion
	}

	// Header
	if m.Header.NumSignatures, err = d.readByte(); err != nil {
		return errors.Wrap(err, "failed to read num signatures")
	}
	if m.Header.NumReadonlySigned, err = d.readByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly signatures")
	}
	if m.Header.NumReadOnly, err = d.readByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly")
	}

	// Accounts
	accountLen, err := d.readLen()
	if err != nil {
		return errors.Wrap(err, "failed to read account len")
	}
	if accountLen > MaxAccounts {
		return errors.Wrapf(ErrTooManyAccounts, "%d accounts", accountLen)
	}
	m.Accounts = make([]ed25519.PublicKey, accountLen)
	for i := 0; i < accountLen; i++ {
		raw, err := d.read(ed25519.PublicKeySize)
		if err != nil {
			return errors.Wrapf(err, "failed to read account at index %d", i)
		}
		m.Accounts[i] = copyKey(raw)
	}

	// Recent block hash
	raw, err := d.read(len(m.RecentBlockhash))
	if err != nil {
		return errors.Wrap(err, "failed to read recent block hash")
	}
	copy(m.RecentBlockhash[:], raw)

	// Instructions
	instructionLen, err := d.readLen()
	if err != nil {
		return errors.Wrap(err, "failed to read instruction len")
	}
	// Every instruction takes at least three bytes.
	if instructionLen > d.remaining()/3 {
		return errors.Wrapf(ErrTruncatedMessage, "%d instructions in %d bytes", instructionLen, d.remaining())
	}
	m.Instructions = make([]CompiledInstruction, instructionLen)
	for i := 0; i < instructionLen; i++ {
		var c CompiledInstruction

		// Program Index
		if c.ProgramIndex, err = d.readByte(); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] program index", i)
		}
		if int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Wrapf(ErrInvalidAccountIndex, "instruction[%d] program index %d", i, c.ProgramIndex)
		}

		// Account Indexes
		indexLen, err := d.readLen()
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] account len", i)
		}
		indices, err := d.read(indexLen)
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] accounts", i)
		}
		c.Accounts = append([]byte{}, indices...)

		for _, index := range c.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Wrapf(ErrInvalidAccountIndex, "instruction[%d] account index %d", i, index)
			}
		}

		// Data
		dataLen, err := d.readLen()
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] data len", i)
		}
		data, err := d.read(dataLen)
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] data", i)
		}
		c.Data = append([]byte{}, data...)

		m.Instructions[i] = c
	}

	return nil
}

// decoder reads from a byte slice without copying.
type decoder struct {
	buf    []byte
	offset int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.offset
}

func (d *decoder) peek() byte {
	return d.buf[d.offset]
}

func (d *decoder) readByte() (byte, error) {
	if d.remaining() < 1 {
		return 0, errors.Wrapf(ErrTruncatedMessage, "need 1 byte at offset %d", d.offset)
	}
	v := d.buf[d.offset]
	d.offset++
	return v, nil
}

func (d *decoder) read(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, errors.Wrapf(ErrTruncatedMessage, "need %d bytes at offset %d, have %d", n, d.offset, d.remaining())
	}
	v := d.buf[d.offset : d.offset+n]
	d.offset += n
	return v, nil
}

func (d *decoder) readLen() (int, error) {
	v, consumed, err := shortvec.Decode(d.buf[d.offset:])
	if err != nil {
		return 0, err
	}
	d.offset += consumed
	return v, nil
}
