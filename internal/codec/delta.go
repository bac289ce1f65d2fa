package codec

import (
	"fmt"
	"math/bits"
)

// Delta implements the Elias Delta code. The codeword for n is the gamma
// codeword of L (the bit length of n) followed by the L-1 bits of n after
// its leading 1. delta(1)="1", delta(2)="0100", delta(8)="00100000".
type Delta struct{}

// Kind returns KindDelta.
func (Delta) Kind() Kind { return KindDelta }

// AppendEncode appends the delta codeword for n to bs.
func (Delta) AppendEncode(bs *Bitstring, n int64) error {
	if n < 1 {
		return fmt.Errorf("delta encode %d: %w", n, ErrInvalidInteger)
	}
	width := bits.Len64(uint64(n))
	if err := (Gamma{}).AppendEncode(bs, int64(width)); err != nil {
		return err
	}
	// Offset: the value bits after the implicit leading 1. Empty for n=1.
	bs.AppendUint(uint64(n), width-1)
	return nil
}

// DecodeOne reads one delta codeword: a gamma-coded length L, consuming
// exactly the bits that gamma codeword occupies, then L-1 offset bits. The
// value is the binary number 1 followed by the offset.
func (Delta) DecodeOne(r *BitReader) (int64, bool) {
	length, ok := (Gamma{}).DecodeOne(r)
	if !ok {
		return 0, false
	}
	if length < 1 || length > 63 {
		return 0, false
	}
	offset, ok := r.ReadUint(int(length) - 1)
	if !ok {
		return 0, false
	}
	return int64(uint64(1)<<uint(length-1) | offset), true
}
