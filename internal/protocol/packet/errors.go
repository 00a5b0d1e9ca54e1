package packet

import (
	"errors"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

var (
	ErrTruncated       = bits.ErrTruncated
	ErrMalformedLength = errors.New("packet: malformed subpacket length")
	ErrMalformedPacket = errors.New("packet: malformed packet")
	ErrUnknownTypeTag  = errors.New("packet: unknown type tag")
	ErrValueOverflow   = errors.New("packet: literal value overflows 64 bits")
	ErrTooLarge        = errors.New("packet: transmission too large")
	ErrTooDeep         = errors.New("packet: nesting too deep")
)
