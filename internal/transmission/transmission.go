// Package transmission decodes one hex-encoded transmission line and
// answers the two questions asked of it: the version sum and the value.
package transmission

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/bitsctl/internal/observability"
	"github.com/danmuck/bitsctl/internal/protocol/bits"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

var ErrEmptyInput = errors.New("transmission: empty input")

// Transmission is a decoded transmission. It is immutable and safe for
// concurrent use.
type Transmission struct {
	hex  string
	root packet.Packet
}

// Parse decodes line, ignoring surrounding whitespace and any bits after
// the outermost packet.
func Parse(line string, limits packet.Limits) (*Transmission, error) {
	start := time.Now()
	hex := strings.TrimSpace(line)
	if hex == "" {
		observability.RecordDecode(observability.OutcomeInvalid, 0, time.Since(start))
		return nil, ErrEmptyInput
	}

	b, err := bits.FromHex(hex)
	if err != nil {
		observability.RecordDecode(observability.OutcomeInvalid, 0, time.Since(start))
		return nil, fmt.Errorf("transmission: %w", err)
	}
	root, err := packet.NewDecoder(limits).Decode(b)
	if err != nil {
		observability.RecordDecode(observability.OutcomeInvalid, 0, time.Since(start))
		log.Debug().Err(err).Int("bits", b.Len()).Msg("transmission rejected")
		return nil, fmt.Errorf("transmission: %w", err)
	}

	elapsed := time.Since(start)
	observability.RecordDecode(observability.OutcomeOK, root.Size(), elapsed)
	log.Debug().
		Int("bits", b.Len()).
		Int("packet_bits", root.Size()).
		Str("root", root.Kind().String()).
		Dur("elapsed", elapsed).
		Msg("transmission decoded")
	return &Transmission{hex: hex, root: root}, nil
}

// Root returns the outermost packet.
func (t *Transmission) Root() packet.Packet {
	return t.root
}

// Hex returns the trimmed input line.
func (t *Transmission) Hex() string {
	return t.hex
}

func (t *Transmission) VersionSum() uint64 {
	return packet.VersionSum(t.root)
}

func (t *Transmission) Value() (uint64, error) {
	v, err := packet.Eval(t.root)
	if err != nil {
		observability.RecordEvalFailure()
		return 0, fmt.Errorf("transmission: %w", err)
	}
	return v, nil
}

// Canonical re-encodes the root packet as hex without trailing padding
// beyond the final nibble.
func (t *Transmission) Canonical() (string, error) {
	b, err := packet.Encode(t.root)
	if err != nil {
		return "", fmt.Errorf("transmission: %w", err)
	}
	return b.Hex()
}

// ReadFirstLine returns the first non-blank line of r.
func ReadFirstLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("transmission: read input: %w", err)
	}
	return "", ErrEmptyInput
}
