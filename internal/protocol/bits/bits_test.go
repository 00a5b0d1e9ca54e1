package bits

import (
	"errors"
	"testing"
)

func TestFromHexExpandsNibblesMostSignificantFirst(t *testing.T) {
	cases := map[string]BitString{
		"D2FE28":         "110100101111111000101000",
		"38006F45291200": "00111000000000000110111101000101001010010001001000000000",
		"EE00D40C823060": "11101110000000001101010000001100100000100011000001100000",
		"":               "",
	}
	for hex, want := range cases {
		got, err := FromHex(hex)
		if err != nil {
			t.Fatalf("from hex %q: %v", hex, err)
		}
		if got != want {
			t.Fatalf("from hex %q: got %s want %s", hex, got, want)
		}
		if got.Len() != 4*len(hex) {
			t.Fatalf("from hex %q: expected %d bits, got %d", hex, 4*len(hex), got.Len())
		}
	}
}

func TestFromHexRejectsInvalidCharacters(t *testing.T) {
	for _, in := range []string{"D2FE2G", "d2fe28", "12 4", "0x12"} {
		if _, err := FromHex(in); !errors.Is(err, ErrInvalidCharacter) {
			t.Fatalf("input %q: expected ErrInvalidCharacter, got %v", in, err)
		}
	}
}

func TestUintReadsBigEndianFields(t *testing.T) {
	b := BitString("110100101111111000101000")
	v, err := b.Uint(0, 3)
	if err != nil || v != 6 {
		t.Fatalf("version: got %d err=%v", v, err)
	}
	v, err = b.Uint(3, 3)
	if err != nil || v != 4 {
		t.Fatalf("type: got %d err=%v", v, err)
	}
	v, err = b.Uint(0, 0)
	if err != nil || v != 0 {
		t.Fatalf("zero width: got %d err=%v", v, err)
	}
}

func TestUintTruncatedIsDeterministic(t *testing.T) {
	_, err := BitString("10101").Uint(3, 3)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	_, err = BitString("1").Bit(1)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestUintRejectsNonBinaryDigits(t *testing.T) {
	_, err := BitString("1021").Uint(0, 4)
	if !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("expected ErrInvalidCharacter, got %v", err)
	}
}

func TestWindowClampsToInput(t *testing.T) {
	b := BitString("110011")
	if got := b.Window(2, 10); got != "0011" {
		t.Fatalf("window: got %q", got)
	}
	if got := b.Window(8, 2); got != "" {
		t.Fatalf("window past end: got %q", got)
	}
	if got := b.From(4); got != "11" {
		t.Fatalf("from: got %q", got)
	}
}

func TestHexPadsFinalNibble(t *testing.T) {
	hex, err := BitString("110100101111111000101").Hex()
	if err != nil {
		t.Fatalf("hex: %v", err)
	}
	if hex != "D2FE28" {
		t.Fatalf("expected D2FE28, got %s", hex)
	}
}

func TestWriterRoundTripsThroughUint(t *testing.T) {
	var w Writer
	if err := w.WriteUint(6, 3); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteUint(27, 15); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.WriteBits("1")
	b := w.BitString()
	if b.Len() != 19 || w.Len() != 19 {
		t.Fatalf("expected 19 bits, got %d", b.Len())
	}
	if v, _ := b.Uint(3, 15); v != 27 {
		t.Fatalf("expected 27, got %d", v)
	}
	if err := w.WriteUint(8, 3); !errors.Is(err, ErrValueTooWide) {
		t.Fatalf("expected ErrValueTooWide, got %v", err)
	}
}
