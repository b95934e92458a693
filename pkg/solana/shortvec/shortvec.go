package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedLen is the largest number of bytes a length may occupy. Five
// groups of seven bits cover the full uint32 range.
const MaxEncodedLen = 5

var (
	// ErrMalformedLength indicates the input ended before a terminating byte
	// was found, the encoding is longer than MaxEncodedLen, or a shorter
	// encoding of the same value exists.
	ErrMalformedLength = errors.New("shortvec: malformed length")

	// ErrInvalidLength indicates a length outside of [0, math.MaxUint32].
	ErrInvalidLength = errors.New("shortvec: invalid length")
)

// EncodeLen encodes the specified len into the writer.
//
// If len is negative or > math.MaxUint32, ErrInvalidLength is returned.
func EncodeLen(w io.Writer, len int) (n int, err error) {
	if len < 0 || uint64(len) > math.MaxUint32 {
		return 0, errors.Wrapf(ErrInvalidLength, "%d", len)
	}

	written, err := w.Write(Encode(len))
	return written, err
}

// Encode returns the shortvec encoding of len. It panics if len is out of
// range; use EncodeLen for untrusted values.
func Encode(len int) []byte {
	if len < 0 || uint64(len) > math.MaxUint32 {
		panic("shortvec: length out of range")
	}

	v := uint32(len)
	out := make([]byte, 0, MaxEncodedLen)
	for v > 0x7f {
		out = append(out, byte(v&0x7f)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

// EncodedLen returns the number of bytes Encode(len) produces.
func EncodedLen(len int) int {
	n := 1
	for v := uint64(len); v > 0x7f; v >>= 7 {
		n++
	}
	return n
}

// DecodeLen decodes a shortvec encoded len from the reader.
func DecodeLen(r io.Reader) (val int, err error) {
	valBuf := make([]byte, 1)

	for offset := 0; offset < MaxEncodedLen; offset++ {
		if _, err := io.ReadFull(r, valBuf); err != nil {
			return 0, errors.Wrapf(ErrMalformedLength, "missing byte %d", offset)
		}

		val |= int(valBuf[0]&0x7f) << (offset * 7)
		if valBuf[0]&0x80 == 0 {
			if err := checkCanonical(valBuf[0], offset); err != nil {
				return 0, err
			}
			return checkRange(val)
		}
	}

	return 0, errors.Wrapf(ErrMalformedLength, "exceeds %d bytes", MaxEncodedLen)
}

// Decode decodes a shortvec encoded len from the start of b, returning the
// value and the number of bytes consumed.
func Decode(b []byte) (val int, consumed int, err error) {
	for offset := 0; offset < MaxEncodedLen; offset++ {
		if offset >= len(b) {
			return 0, 0, errors.Wrapf(ErrMalformedLength, "missing byte %d", offset)
		}

		val |= int(b[offset]&0x7f) << (offset * 7)
		if b[offset]&0x80 == 0 {
			if err := checkCanonical(b[offset], offset); err != nil {
				return 0, 0, err
			}
			val, err = checkRange(val)
			return val, offset + 1, err
		}
	}

	return 0, 0, errors.Wrapf(ErrMalformedLength, "exceeds %d bytes", MaxEncodedLen)
}

// checkCanonical rejects a zero terminating byte after a continuation, which
// encodes the same value as a shorter sequence.
func checkCanonical(last byte, offset int) error {
	if offset > 0 && last == 0 {
		return errors.Wrapf(ErrMalformedLength, "non-canonical encoding of %d bytes", offset+1)
	}
	return nil
}

func checkRange(val int) (int, error) {
	// The fifth group carries 7 bits, of which only 4 fit in a uint32.
	if uint64(val) > math.MaxUint32 {
		return 0, errors.Wrapf(ErrMalformedLength, "value %d overflows uint32", val)
	}
	return val, nil
}
