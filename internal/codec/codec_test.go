package codec

import (
	"errors"
	"testing"
)

func encodeString(t *testing.T, c Codec, n int64) string {
	t.Helper()
	bs, err := Encode(c, n)
	if err != nil {
		t.Fatalf("%s encode %d: %v", c.Kind(), n, err)
	}
	return bs.String()
}

func TestGammaEncodeVectors(t *testing.T) {
	vectors := map[int64]string{
		1: "1",
		2: "010",
		3: "011",
		4: "00100",
		5: "00101",
		6: "00110",
		7: "00111",
		8: "0001000",
	}
	for n, want := range vectors {
		if got := encodeString(t, Gamma{}, n); got != want {
			t.Errorf("gamma(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestDeltaEncodeVectors(t *testing.T) {
	// Derived by hand: gamma(bit length) followed by the offset bits.
	vectors := map[int64]string{
		1: "1",
		2: "0100",
		3: "0101",
		4: "01100",
		5: "01101",
		6: "01110",
		7: "01111",
		8: "00100000",
	}
	for n, want := range vectors {
		if got := encodeString(t, Delta{}, n); got != want {
			t.Errorf("delta(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestEncodeRejectsNonPositive(t *testing.T) {
	for _, c := range []Codec{Gamma{}, Delta{}} {
		for _, n := range []int64{0, -1, -100} {
			bs := NewBitstring()
			err := c.AppendEncode(bs, n)
			if !errors.Is(err, ErrInvalidInteger) {
				t.Errorf("%s encode %d: got %v, want ErrInvalidInteger", c.Kind(), n, err)
			}
			if bs.Len() != 0 {
				t.Errorf("%s encode %d wrote %d bits despite failing", c.Kind(), n, bs.Len())
			}
		}
	}
}

func TestDecodeConcatenatedCodewords(t *testing.T) {
	for _, c := range []Codec{Gamma{}, Delta{}} {
		bs := NewBitstring()
		for _, n := range []int64{3, 5} {
			if err := c.AppendEncode(bs, n); err != nil {
				t.Fatalf("%s encode %d: %v", c.Kind(), n, err)
			}
		}
		got := DecodeAll(c, bs)
		if len(got) != 2 || got[0] != 3 || got[1] != 5 {
			t.Errorf("%s DecodeAll = %v, want [3 5]", c.Kind(), got)
		}
	}
}

func TestDecodeDropsTruncatedTail(t *testing.T) {
	cases := []struct {
		kind Kind
		bits string
		want []int64
	}{
		// gamma(3)="011" followed by "00": a zero run with nothing after it.
		{KindGamma, "01100", []int64{3}},
		// gamma(3) followed by "001": run of 2 zeros needs 3 value bits.
		{KindGamma, "011001", []int64{3}},
		// delta(2)="0100" followed by "0110": the length prefix decodes to
		// L=3 but only one of the two offset bits remains.
		{KindDelta, "01000110", []int64{2}},
		// A lone zero decodes to nothing.
		{KindGamma, "0", []int64{}},
		{KindDelta, "0", []int64{}},
	}
	for _, tc := range cases {
		c, err := ForKind(tc.kind)
		if err != nil {
			t.Fatalf("ForKind(%s): %v", tc.kind, err)
		}
		bs, err := ParseBitstring(tc.bits)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.bits, err)
		}
		got := DecodeAll(c, bs)
		if len(got) != len(tc.want) {
			t.Errorf("%s DecodeAll(%q) = %v, want %v", tc.kind, tc.bits, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%s DecodeAll(%q) = %v, want %v", tc.kind, tc.bits, got, tc.want)
				break
			}
		}
	}
}

func TestDecodeAllStrict(t *testing.T) {
	for _, c := range []Codec{Gamma{}, Delta{}} {
		bs := NewBitstring()
		for _, n := range []int64{1, 9, 42} {
			if err := c.AppendEncode(bs, n); err != nil {
				t.Fatalf("%s encode %d: %v", c.Kind(), n, err)
			}
		}
		values, err := DecodeAllStrict(c, bs)
		if err != nil {
			t.Errorf("%s strict decode of clean stream: %v", c.Kind(), err)
		}
		if len(values) != 3 {
			t.Errorf("%s strict decode returned %v", c.Kind(), values)
		}

		bs.AppendZeros(2)
		if _, err := DecodeAllStrict(c, bs); !errors.Is(err, ErrTruncated) {
			t.Errorf("%s strict decode of truncated stream: got %v, want ErrTruncated", c.Kind(), err)
		}
	}
}

func TestRoundTripRange(t *testing.T) {
	for _, c := range []Codec{Gamma{}, Delta{}} {
		bs := NewBitstring()
		want := make([]int64, 0, 1031)
		for n := int64(1); n <= 1000; n++ {
			want = append(want, n)
		}
		// Values around bit-length boundaries and a few large ones.
		for _, n := range []int64{1023, 1024, 1025, 65535, 65536, 1 << 40, 1<<62 - 1} {
			want = append(want, n)
		}
		for _, n := range want {
			if err := c.AppendEncode(bs, n); err != nil {
				t.Fatalf("%s encode %d: %v", c.Kind(), n, err)
			}
		}
		got := DecodeAll(c, bs)
		if len(got) != len(want) {
			t.Fatalf("%s round trip: %d values out, %d in", c.Kind(), len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s round trip: value %d decoded as %d at index %d", c.Kind(), want[i], got[i], i)
			}
		}
	}
}

func TestForKind(t *testing.T) {
	for _, k := range []Kind{KindGamma, KindDelta} {
		c, err := ForKind(k)
		if err != nil {
			t.Fatalf("ForKind(%s): %v", k, err)
		}
		if c.Kind() != k {
			t.Errorf("ForKind(%s).Kind() = %s", k, c.Kind())
		}
		if !k.Valid() {
			t.Errorf("Kind(%s).Valid() = false", k)
		}
	}
	if _, err := ForKind("rice"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ForKind(rice): got %v, want ErrUnknownKind", err)
	}
	if Kind("rice").Valid() {
		t.Error("Kind(rice).Valid() = true")
	}
}
