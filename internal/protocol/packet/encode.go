package packet

import (
	"fmt"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

// NewLiteral builds a literal with the fewest groups that hold value.
func NewLiteral(version uint8, value uint64) (*Literal, error) {
	if version > 7 {
		return nil, fmt.Errorf("%w: version %d does not fit 3 bits", ErrMalformedPacket, version)
	}
	groups := 1
	for v := value >> 4; v != 0; v >>= 4 {
		groups++
	}
	return &Literal{
		header: Header{Version: version, Type: uint8(KindLiteral)},
		value:  value,
		groups: groups,
		size:   HeaderBits + groups*LiteralGroupBits,
	}, nil
}

// NewOperator builds an operator over children using the given length
// mode. The descriptor value is derived from the children.
func NewOperator(version uint8, kind Kind, mode LengthMode, children ...Packet) (*Operator, error) {
	if version > 7 {
		return nil, fmt.Errorf("%w: version %d does not fit 3 bits", ErrMalformedPacket, version)
	}
	if kind == KindLiteral || kind > KindEqualTo {
		return nil, fmt.Errorf("%w: %s is not an operator", ErrMalformedPacket, kind)
	}
	owned := make([]Packet, len(children))
	childBits := 0
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%w: nil subpacket %d", ErrMalformedPacket, i)
		}
		owned[i] = child
		childBits += child.Size()
	}

	length := LengthDescriptor{Mode: mode, N: len(owned)}
	switch mode {
	case LengthTotalBits:
		length.N = childBits
		if childBits > maxTotalBits {
			return nil, fmt.Errorf("%w: %d subpacket bits exceed %d", ErrMalformedLength, childBits, maxTotalBits)
		}
	case LengthSubpacketCount:
		if len(owned) > maxCount {
			return nil, fmt.Errorf("%w: %d subpackets exceed %d", ErrMalformedLength, len(owned), maxCount)
		}
	default:
		return nil, fmt.Errorf("%w: length mode %d", ErrMalformedLength, mode)
	}

	return &Operator{
		header:   Header{Version: version, Type: uint8(kind)},
		kind:     kind,
		length:   length,
		children: owned,
		size:     HeaderBits + length.Width() + childBits,
	}, nil
}

// Encode writes p back to its bit form. Decoding the result yields an
// equal tree with identical sizes.
func Encode(p Packet) (bits.BitString, error) {
	var w bits.Writer
	if err := encode(&w, p); err != nil {
		return "", err
	}
	return w.BitString(), nil
}

func encode(w *bits.Writer, p Packet) error {
	if p == nil {
		return fmt.Errorf("%w: nil packet", ErrMalformedPacket)
	}
	h := p.Header()
	if err := w.WriteUint(uint64(h.Version), versionBits); err != nil {
		return err
	}
	if err := w.WriteUint(uint64(h.Type), typeBits); err != nil {
		return err
	}

	switch p := p.(type) {
	case *Literal:
		for i := p.groups - 1; i >= 0; i-- {
			group := p.value >> uint(4*i) & 0x0f
			if i > 0 {
				group |= 0x10
			}
			if err := w.WriteUint(group, LiteralGroupBits); err != nil {
				return err
			}
		}
		return nil
	case *Operator:
		return encodeOperator(w, p)
	default:
		return fmt.Errorf("%w: unexpected node %T", ErrMalformedPacket, p)
	}
}

func encodeOperator(w *bits.Writer, o *Operator) error {
	n := len(o.children)
	width := countWidth
	if o.length.Mode == LengthTotalBits {
		n = 0
		for _, child := range o.children {
			n += child.Size()
		}
		width = totalBitsWidth
	}
	if err := w.WriteUint(uint64(o.length.Mode), 1); err != nil {
		return err
	}
	if err := w.WriteUint(uint64(n), width); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedLength, err)
	}
	for _, child := range o.children {
		if err := encode(w, child); err != nil {
			return err
		}
	}
	return nil
}
