package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrShortBuffer indicates a read past the end of the buffer.
var ErrShortBuffer = errors.New("short buffer")

// Encoder writes little endian fields into a fixed size buffer.
type Encoder struct {
	buf    []byte
	offset int
}

func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, size)}
}

func (e *Encoder) PutUint8(v uint8) {
	e.buf[e.offset] = v
	e.offset++
}

func (e *Encoder) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[e.offset:], v)
	e.offset += 4
}

func (e *Encoder) PutUint64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[e.offset:], v)
	e.offset += 8
}

// PutKey32 writes key, zero padded or truncated to 32 bytes.
func (e *Encoder) PutKey32(key []byte) {
	copy(e.buf[e.offset:e.offset+ed25519.PublicKeySize], key)
	e.offset += ed25519.PublicKeySize
}

// Bytes returns the underlying buffer, including any unwritten tail.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder reads little endian fields. The first short read is sticky: later
// reads return zero values and Err reports it.
type Decoder struct {
	buf    []byte
	offset int
	err    error
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

func (d *Decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf)-d.offset < n {
		d.err = errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, d.offset, len(d.buf)-d.offset)
		return nil
	}
	b := d.buf[d.offset : d.offset+n]
	d.offset += n
	return b
}

func (d *Decoder) GetUint8() uint8 {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) GetUint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *Decoder) GetUint64() uint64 {
	b := d.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// GetKey32 returns a copy of the next 32 bytes.
func (d *Decoder) GetKey32() ed25519.PublicKey {
	b := d.next(ed25519.PublicKeySize)
	if b == nil {
		return nil
	}
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, b)
	return key
}

// Remaining is the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.offset
}

func (d *Decoder) Err() error {
	return d.err
}
