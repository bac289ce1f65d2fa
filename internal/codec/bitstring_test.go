package codec

import (
	"strings"
	"testing"
)

func TestBitstringAppendAndRead(t *testing.T) {
	bs := NewBitstring()
	bs.AppendBit(1)
	bs.AppendZeros(2)
	bs.AppendUint(0b101, 3)

	if got, want := bs.String(), "100101"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if bs.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", bs.Len())
	}

	r := NewBitReader(bs)
	v, ok := r.ReadUint(6)
	if !ok || v != 0b100101 {
		t.Fatalf("ReadUint(6) = %b, %v", v, ok)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining() = %d after full read", r.Remaining())
	}
	if _, ok := r.ReadBit(); ok {
		t.Fatal("ReadBit succeeded past end of bitstring")
	}
}

func TestBitstringCrossesByteBoundary(t *testing.T) {
	bs := NewBitstring()
	pattern := "110100101101001011"
	for i := 0; i < len(pattern); i++ {
		bs.AppendBit(pattern[i] - '0')
	}
	if got := bs.String(); got != pattern {
		t.Fatalf("String() = %q, want %q", got, pattern)
	}
}

func TestParseBitstring(t *testing.T) {
	bs, err := ParseBitstring("0100")
	if err != nil {
		t.Fatalf("ParseBitstring: %v", err)
	}
	if got := bs.String(); got != "0100" {
		t.Fatalf("round trip = %q", got)
	}

	if _, err := ParseBitstring("01x0"); err == nil {
		t.Fatal("expected error for non-binary character")
	}
	empty, err := ParseBitstring("")
	if err != nil || empty.Len() != 0 {
		t.Fatalf("empty parse: len=%d err=%v", empty.Len(), err)
	}
}

func TestBitstringMarshalBinary(t *testing.T) {
	cases := []string{"", "1", "0100", "110100101101001011", strings.Repeat("10", 100)}
	for _, s := range cases {
		bs, err := ParseBitstring(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		data, err := bs.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal %q: %v", s, err)
		}
		var back Bitstring
		if err := back.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal %q: %v", s, err)
		}
		if !bs.Equal(&back) {
			t.Fatalf("round trip of %q produced %q", s, back.String())
		}
	}
}

func TestBitstringUnmarshalRejectsBadInput(t *testing.T) {
	var bs Bitstring
	if err := bs.UnmarshalBinary([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short header")
	}
	// Header claims 16 bits but only one payload byte follows.
	if err := bs.UnmarshalBinary([]byte{0, 0, 0, 0, 0, 0, 0, 16, 0xff}); err == nil {
		t.Fatal("expected error for payload length mismatch")
	}
}
