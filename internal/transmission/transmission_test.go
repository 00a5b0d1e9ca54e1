package transmission

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"github.com/danmuck/bitsctl/internal/testutil/testlog"
)

func TestParseAnswersBothParts(t *testing.T) {
	testlog.Start(t)

	tx, err := Parse("  9C0141080250320F1802104A08\n", packet.DefaultLimits())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tx.Hex() != "9C0141080250320F1802104A08" {
		t.Fatalf("unexpected hex: %q", tx.Hex())
	}
	if got := tx.VersionSum(); got != 20 {
		t.Fatalf("expected version sum 20, got %d", got)
	}
	v, err := tx.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != 1 {
		t.Fatalf("expected value 1, got %d", v)
	}
	if tx.Root().Kind() != packet.KindEqualTo {
		t.Fatalf("unexpected root kind %s", tx.Root().Kind())
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	testlog.Start(t)

	if _, err := Parse("   ", packet.DefaultLimits()); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := Parse("D2FE2Z", packet.DefaultLimits()); !errors.Is(err, bits.ErrInvalidCharacter) {
		t.Fatalf("expected ErrInvalidCharacter, got %v", err)
	}
	if _, err := Parse("D2", packet.DefaultLimits()); !errors.Is(err, packet.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if _, err := Parse("D2FE28", packet.Limits{MaxBits: 4}); !errors.Is(err, packet.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestCanonicalDropsPadding(t *testing.T) {
	testlog.Start(t)

	tx, err := Parse("38006F45291200", packet.DefaultLimits())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := tx.Canonical()
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	// 49 packet bits round up to 13 nibbles
	if got != "38006F4529120" {
		t.Fatalf("unexpected canonical hex %q", got)
	}
	again, err := Parse(got, packet.DefaultLimits())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.VersionSum() != tx.VersionSum() {
		t.Fatalf("canonical form changed version sum")
	}
}

func TestConcurrentReadersAgree(t *testing.T) {
	testlog.Start(t)

	tx, err := Parse("A0016C880162017C3686B18A3D4780", packet.DefaultLimits())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := tx.VersionSum(); got != 31 {
				errs <- errors.New("version sum drifted")
				return
			}
			if _, err := tx.Value(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent read: %v", err)
	}
}

func TestReadFirstLineSkipsBlankLines(t *testing.T) {
	line, err := ReadFirstLine(strings.NewReader("\n  \nD2FE28\n38006F45291200\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "D2FE28" {
		t.Fatalf("expected D2FE28, got %q", line)
	}
	if _, err := ReadFirstLine(strings.NewReader("\n\n")); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestValueReportsMalformedOperators(t *testing.T) {
	testlog.Start(t)

	// min over a zero-bit subpacket budget
	tx, err := Parse("08000000", packet.DefaultLimits())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := tx.Value(); !errors.Is(err, packet.ErrMalformedPacket) {
		t.Fatalf("expected ErrMalformedPacket, got %v", err)
	}
	if got := tx.VersionSum(); got != 0 {
		t.Fatalf("expected version sum 0, got %d", got)
	}
}
