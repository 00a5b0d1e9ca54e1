package packet

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one line per packet, children indented under their
// operator.
func Dump(w io.Writer, p Packet) error {
	return dump(w, p, 0)
}

func dump(w io.Writer, p Packet, depth int) error {
	indent := strings.Repeat("  ", depth)
	switch p := p.(type) {
	case *Literal:
		_, err := fmt.Fprintf(w, "%sliteral v%d bits=%d value=%d\n", indent, p.header.Version, p.size, p.value)
		return err
	case *Operator:
		if _, err := fmt.Fprintf(w, "%s%s v%d bits=%d %s\n", indent, p.kind, p.header.Version, p.size, p.length); err != nil {
			return err
		}
		for _, child := range p.children {
			if err := dump(w, child, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unexpected node %T", ErrMalformedPacket, p)
	}
}
