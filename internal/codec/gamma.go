package codec

import (
	"fmt"
	"math/bits"
)

// Gamma implements the Elias Gamma code. The codeword for n is N zero bits
// followed by the (N+1)-bit binary representation of n, where N is the bit
// length of n minus one. gamma(1)="1", gamma(2)="010", gamma(4)="00100".
type Gamma struct{}

// Kind returns KindGamma.
func (Gamma) Kind() Kind { return KindGamma }

// AppendEncode appends the gamma codeword for n to bs.
func (Gamma) AppendEncode(bs *Bitstring, n int64) error {
	if n < 1 {
		return fmt.Errorf("gamma encode %d: %w", n, ErrInvalidInteger)
	}
	width := bits.Len64(uint64(n))
	bs.AppendZeros(width - 1)
	bs.AppendUint(uint64(n), width)
	return nil
}

// DecodeOne reads one gamma codeword: a run of N zeros followed by N+1
// value bits. A zero run with fewer than N+1 bits after it is a truncated
// fragment and decoding stops.
func (Gamma) DecodeOne(r *BitReader) (int64, bool) {
	zeros := 0
	for {
		bit, ok := r.ReadBit()
		if !ok {
			return 0, false
		}
		if bit == 1 {
			break
		}
		zeros++
		if zeros > 62 {
			// Longer runs cannot encode an int64; treat as malformed.
			return 0, false
		}
	}
	// The leading 1 of the value has been consumed already.
	rest, ok := r.ReadUint(zeros)
	if !ok {
		return 0, false
	}
	return int64(uint64(1)<<uint(zeros) | rest), true
}
