package packet

import (
	"fmt"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

// ReadHeader reads the version and type tag from the first 6 bits of b.
func ReadHeader(b bits.BitString) (Header, error) {
	if b.Len() < HeaderBits {
		return Header{}, fmt.Errorf("%w: header needs %d bits, have %d", ErrTruncated, HeaderBits, b.Len())
	}
	version, err := b.Uint(0, versionBits)
	if err != nil {
		return Header{}, err
	}
	tag, err := b.Uint(versionBits, typeBits)
	if err != nil {
		return Header{}, err
	}
	return Header{Version: uint8(version), Type: uint8(tag)}, nil
}

// ReadLengthDescriptor reads an operator's length descriptor. b must
// start immediately after the packet header.
func ReadLengthDescriptor(b bits.BitString) (LengthDescriptor, error) {
	count, err := b.Bit(0)
	if err != nil {
		return LengthDescriptor{}, fmt.Errorf("length mode: %w", err)
	}
	d := LengthDescriptor{Mode: LengthTotalBits}
	width := totalBitsWidth
	if count {
		d.Mode = LengthSubpacketCount
		width = countWidth
	}
	n, err := b.Uint(1, width)
	if err != nil {
		return LengthDescriptor{}, fmt.Errorf("length %s: %w", d.Mode, err)
	}
	d.N = int(n)
	return d, nil
}
