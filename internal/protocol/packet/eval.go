package packet

import (
	"fmt"
	"slices"
)

// Eval computes the value of p. Sums and products wrap at 64 bits.
func Eval(p Packet) (uint64, error) {
	switch p := p.(type) {
	case *Literal:
		return p.value, nil
	case *Operator:
		return evalOperator(p)
	default:
		return 0, fmt.Errorf("%w: unexpected node %T", ErrMalformedPacket, p)
	}
}

func evalOperator(o *Operator) (uint64, error) {
	values := make([]uint64, len(o.children))
	for i, child := range o.children {
		v, err := Eval(child)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}

	switch o.kind {
	case KindSum:
		var sum uint64
		for _, v := range values {
			sum += v
		}
		return sum, nil
	case KindProduct:
		product := uint64(1)
		for _, v := range values {
			product *= v
		}
		return product, nil
	case KindMin, KindMax:
		if len(values) == 0 {
			return 0, fmt.Errorf("%w: %s operator has no subpackets", ErrMalformedPacket, o.kind)
		}
		if o.kind == KindMin {
			return slices.Min(values), nil
		}
		return slices.Max(values), nil
	case KindGreaterThan, KindLessThan, KindEqualTo:
		if len(values) != 2 {
			return 0, fmt.Errorf("%w: %s operator needs 2 subpackets, has %d",
				ErrMalformedPacket, o.kind, len(values))
		}
		return compare(o.kind, values[0], values[1]), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownTypeTag, uint8(o.kind))
	}
}

func compare(kind Kind, a, b uint64) uint64 {
	var ok bool
	switch kind {
	case KindGreaterThan:
		ok = a > b
	case KindLessThan:
		ok = a < b
	default:
		ok = a == b
	}
	if ok {
		return 1
	}
	return 0
}

// VersionSum adds up the header versions of p and every descendant.
func VersionSum(p Packet) uint64 {
	switch p := p.(type) {
	case *Literal:
		return uint64(p.header.Version)
	case *Operator:
		sum := uint64(p.header.Version)
		for _, child := range p.children {
			sum += VersionSum(child)
		}
		return sum
	default:
		return 0
	}
}
