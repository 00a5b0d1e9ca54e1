// Package bits converts hex transmissions into bit strings and reads
// fixed-width unsigned fields out of them.
package bits

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCharacter = errors.New("bits: invalid hex character")
	ErrTruncated        = errors.New("bits: truncated input")
	ErrFieldTooWide     = errors.New("bits: field wider than 64 bits")
	ErrValueTooWide     = errors.New("bits: value does not fit field")
)

// BitString is an immutable run of '0' and '1' digits.
type BitString string

var nibbles = [16]string{
	"0000", "0001", "0010", "0011",
	"0100", "0101", "0110", "0111",
	"1000", "1001", "1010", "1011",
	"1100", "1101", "1110", "1111",
}

// FromHex expands each upper-case hex digit into its 4-bit form, most
// significant bit first.
func FromHex(hex string) (BitString, error) {
	var b strings.Builder
	b.Grow(4 * len(hex))
	for i := 0; i < len(hex); i++ {
		v, ok := hexValue(hex[i])
		if !ok {
			return "", fmt.Errorf("%w %q at index %d", ErrInvalidCharacter, hex[i], i)
		}
		b.WriteString(nibbles[v])
	}
	return BitString(b.String()), nil
}

func hexValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

// Len returns the number of bits.
func (b BitString) Len() int {
	return len(b)
}

// Uint reads width bits starting at off as a big-endian unsigned value.
func (b BitString) Uint(off, width int) (uint64, error) {
	if width > 64 {
		return 0, ErrFieldTooWide
	}
	if off < 0 || width < 0 || off+width > len(b) {
		return 0, fmt.Errorf("%w: need %d bits at offset %d, have %d", ErrTruncated, width, off, len(b))
	}
	var v uint64
	for i := off; i < off+width; i++ {
		v <<= 1
		switch b[i] {
		case '0':
		case '1':
			v |= 1
		default:
			return 0, fmt.Errorf("%w: non-binary digit %q at offset %d", ErrInvalidCharacter, b[i], i)
		}
	}
	return v, nil
}

// Bit reports whether the bit at off is set.
func (b BitString) Bit(off int) (bool, error) {
	v, err := b.Uint(off, 1)
	return v == 1, err
}

// From returns the suffix starting at off. It does not copy.
func (b BitString) From(off int) BitString {
	if off >= len(b) {
		return ""
	}
	return b[off:]
}

// Window returns bits [off, off+n), clamped to the available input.
func (b BitString) Window(off, n int) BitString {
	if off >= len(b) {
		return ""
	}
	end := off + n
	if end > len(b) {
		end = len(b)
	}
	return b[off:end]
}

// Hex renders the bits as upper-case hex, zero-padding the final nibble.
func (b BitString) Hex() (string, error) {
	var out strings.Builder
	out.Grow((len(b) + 3) / 4)
	for off := 0; off < len(b); off += 4 {
		chunk := string(b.Window(off, 4))
		chunk += strings.Repeat("0", 4-len(chunk))
		v, err := BitString(chunk).Uint(0, 4)
		if err != nil {
			return "", err
		}
		out.WriteByte("0123456789ABCDEF"[v])
	}
	return out.String(), nil
}

// Writer accumulates fixed-width fields into a BitString.
type Writer struct {
	buf strings.Builder
}

// WriteUint appends the low width bits of v, most significant first.
func (w *Writer) WriteUint(v uint64, width int) error {
	if width > 64 {
		return ErrFieldTooWide
	}
	if width < 64 && v>>uint(width) != 0 {
		return fmt.Errorf("%w: %d in %d bits", ErrValueTooWide, v, width)
	}
	for i := width - 1; i >= 0; i-- {
		if v>>uint(i)&1 == 1 {
			w.buf.WriteByte('1')
		} else {
			w.buf.WriteByte('0')
		}
	}
	return nil
}

// WriteBits appends raw bits.
func (w *Writer) WriteBits(b BitString) {
	w.buf.WriteString(string(b))
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// BitString returns everything written.
func (w *Writer) BitString() BitString {
	return BitString(w.buf.String())
}
