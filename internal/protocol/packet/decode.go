package packet

import (
	"errors"
	"fmt"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

// Limits constrains decode work on untrusted input. Zero fields are
// unlimited.
type Limits struct {
	MaxBits  int
	MaxDepth int
}

func DefaultLimits() Limits {
	return Limits{
		MaxBits:  1 << 20,
		MaxDepth: 512,
	}
}

// Decoder turns bit strings into packet trees.
type Decoder struct {
	limits Limits
}

func NewDecoder(limits Limits) *Decoder {
	return &Decoder{limits: limits}
}

// Decode decodes the packet starting at bit 0 of b with DefaultLimits.
// Bits after the packet are ignored.
func Decode(b bits.BitString) (Packet, error) {
	return NewDecoder(DefaultLimits()).Decode(b)
}

// DecodeLiteral decodes b as a literal packet with DefaultLimits.
func DecodeLiteral(b bits.BitString) (*Literal, error) {
	if err := NewDecoder(DefaultLimits()).checkSize(b); err != nil {
		return nil, err
	}
	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	if h.Type != uint8(KindLiteral) {
		return nil, fmt.Errorf("%w: type tag %d is not a literal", ErrMalformedPacket, h.Type)
	}
	return decodeLiteral(b, h, 0)
}

// DecodeOperator decodes b as an operator packet with DefaultLimits.
func DecodeOperator(b bits.BitString) (*Operator, error) {
	d := NewDecoder(DefaultLimits())
	if err := d.checkSize(b); err != nil {
		return nil, err
	}
	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	kind, err := KindOf(h.Type)
	if err != nil {
		return nil, err
	}
	if kind == KindLiteral {
		return nil, fmt.Errorf("%w: type tag %d is not an operator", ErrMalformedPacket, h.Type)
	}
	return d.decodeOperator(b, h, kind, 0, 0)
}

func (d *Decoder) Decode(b bits.BitString) (Packet, error) {
	if err := d.checkSize(b); err != nil {
		return nil, err
	}
	return d.decode(b, 0, 0)
}

func (d *Decoder) checkSize(b bits.BitString) error {
	if d.limits.MaxBits > 0 && b.Len() > d.limits.MaxBits {
		return fmt.Errorf("%w: %d bits exceeds %d", ErrTooLarge, b.Len(), d.limits.MaxBits)
	}
	return nil
}

// decode reads one packet from the start of b. base is the absolute
// offset of b within the transmission and only feeds error messages.
func (d *Decoder) decode(b bits.BitString, base, depth int) (Packet, error) {
	if d.limits.MaxDepth > 0 && depth > d.limits.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d at bit %d", ErrTooDeep, depth, base)
	}
	h, err := ReadHeader(b)
	if err != nil {
		return nil, fmt.Errorf("packet at bit %d: %w", base, err)
	}
	kind, err := KindOf(h.Type)
	if err != nil {
		return nil, fmt.Errorf("packet at bit %d: %w", base, err)
	}
	if kind == KindLiteral {
		return decodeLiteral(b, h, base)
	}
	return d.decodeOperator(b, h, kind, base, depth)
}

func decodeLiteral(b bits.BitString, h Header, base int) (*Literal, error) {
	off := HeaderBits
	groups := 0
	var value uint64
	for {
		group, err := b.Uint(off, LiteralGroupBits)
		if err != nil {
			return nil, fmt.Errorf("literal at bit %d, group %d: %w", base, groups, err)
		}
		if value>>60 != 0 {
			return nil, fmt.Errorf("%w: literal at bit %d", ErrValueOverflow, base)
		}
		value = value<<4 | group&0x0f
		off += LiteralGroupBits
		groups++
		if group&0x10 == 0 {
			break
		}
	}
	return &Literal{header: h, value: value, groups: groups, size: off}, nil
}

func (d *Decoder) decodeOperator(b bits.BitString, h Header, kind Kind, base, depth int) (*Operator, error) {
	length, err := ReadLengthDescriptor(b.From(HeaderBits))
	if err != nil {
		return nil, fmt.Errorf("operator at bit %d: %w", base, err)
	}
	start := HeaderBits + length.Width()
	body := b.From(start)

	var children []Packet
	var used int
	switch length.Mode {
	case LengthTotalBits:
		children, used, err = d.decodeByTotalBits(body, length.N, base+start, depth)
	default:
		children, used, err = d.decodeByCount(body, length.N, base+start, depth)
	}
	if err != nil {
		return nil, err
	}
	return &Operator{
		header:   h,
		kind:     kind,
		length:   length,
		children: children,
		size:     start + used,
	}, nil
}

// decodeByTotalBits decodes children until exactly total bits are used.
// Each child only sees the unused part of the budget, so a child that
// runs past it fails instead of reading its sibling's bits.
func (d *Decoder) decodeByTotalBits(body bits.BitString, total, base, depth int) ([]Packet, int, error) {
	if total > body.Len() {
		return nil, 0, fmt.Errorf("%w: subpackets at bit %d declare %d bits, have %d",
			ErrTruncated, base, total, body.Len())
	}
	budget := body.Window(0, total)
	children := make([]Packet, 0, 2)
	used := 0
	for used < total {
		child, err := d.decode(budget.From(used), base+used, depth+1)
		if err != nil {
			if errors.Is(err, ErrTruncated) {
				return nil, 0, fmt.Errorf("%w: subpacket at bit %d overruns %d-bit budget: %v",
					ErrMalformedLength, base+used, total, err)
			}
			return nil, 0, err
		}
		used += child.Size()
		children = append(children, child)
	}
	return children, used, nil
}

func (d *Decoder) decodeByCount(body bits.BitString, count, base, depth int) ([]Packet, int, error) {
	children := make([]Packet, 0, count)
	used := 0
	for i := 0; i < count; i++ {
		child, err := d.decode(body.From(used), base+used, depth+1)
		if err != nil {
			return nil, 0, err
		}
		used += child.Size()
		children = append(children, child)
	}
	return children, used, nil
}
