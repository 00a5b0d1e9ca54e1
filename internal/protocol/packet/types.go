package packet

import "fmt"

const (
	HeaderBits       = 6
	LiteralGroupBits = 5

	versionBits    = 3
	typeBits       = 3
	totalBitsWidth = 15
	countWidth     = 11

	maxTotalBits = 1<<totalBitsWidth - 1
	maxCount     = 1<<countWidth - 1
)

// Header is the 6-bit prefix every packet starts with.
type Header struct {
	Version uint8
	Type    uint8
}

// Kind is the resolved meaning of a header type tag.
type Kind uint8

const (
	KindSum         Kind = 0
	KindProduct     Kind = 1
	KindMin         Kind = 2
	KindMax         Kind = 3
	KindLiteral     Kind = 4
	KindGreaterThan Kind = 5
	KindLessThan    Kind = 6
	KindEqualTo     Kind = 7
)

// KindOf resolves a 3-bit type tag.
func KindOf(tag uint8) (Kind, error) {
	if tag > uint8(KindEqualTo) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownTypeTag, tag)
	}
	return Kind(tag), nil
}

func (k Kind) String() string {
	switch k {
	case KindSum:
		return "sum"
	case KindProduct:
		return "product"
	case KindMin:
		return "min"
	case KindMax:
		return "max"
	case KindLiteral:
		return "literal"
	case KindGreaterThan:
		return "greater-than"
	case KindLessThan:
		return "less-than"
	case KindEqualTo:
		return "equal-to"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Comparison reports whether k is one of the two-operand relations.
func (k Kind) Comparison() bool {
	return k == KindGreaterThan || k == KindLessThan || k == KindEqualTo
}

// LengthMode selects how an operator bounds its subpackets.
type LengthMode uint8

const (
	LengthTotalBits      LengthMode = 0
	LengthSubpacketCount LengthMode = 1
)

func (m LengthMode) String() string {
	if m == LengthSubpacketCount {
		return "count"
	}
	return "total-bits"
}

// LengthDescriptor follows an operator header.
type LengthDescriptor struct {
	Mode LengthMode
	N    int
}

// Width is the encoded size of the descriptor, mode bit included.
func (d LengthDescriptor) Width() int {
	if d.Mode == LengthSubpacketCount {
		return 1 + countWidth
	}
	return 1 + totalBitsWidth
}

func (d LengthDescriptor) String() string {
	return fmt.Sprintf("%s(%d)", d.Mode, d.N)
}

// Packet is either a *Literal or an *Operator.
type Packet interface {
	Header() Header
	Kind() Kind
	// Size is the number of bits the packet occupies, children included.
	Size() int

	packet()
}

// Literal carries a single value.
type Literal struct {
	header Header
	value  uint64
	groups int
	size   int
}

func (l *Literal) Header() Header { return l.header }
func (l *Literal) Kind() Kind     { return KindLiteral }
func (l *Literal) Size() int      { return l.size }
func (l *Literal) Value() uint64  { return l.value }

// Groups is the number of 5-bit groups the value was encoded with.
func (l *Literal) Groups() int { return l.groups }

func (*Literal) packet() {}

// Operator combines the values of its children.
type Operator struct {
	header   Header
	kind     Kind
	length   LengthDescriptor
	children []Packet
	size     int
}

func (o *Operator) Header() Header           { return o.header }
func (o *Operator) Kind() Kind               { return o.kind }
func (o *Operator) Size() int                { return o.size }
func (o *Operator) Length() LengthDescriptor { return o.length }

// Children returns the subpackets in wire order. The slice is shared
// with the tree and must not be modified.
func (o *Operator) Children() []Packet { return o.children }

func (*Operator) packet() {}
