// Package codec implements the universal integer codes (Elias Gamma and
// Elias Delta) used to compress posting-list gaps, together with the packed
// Bitstring type their codewords are written into. Codewords are
// self-delimiting, so a Bitstring is simply a concatenation of codewords
// with no separators.
package codec

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Bitstring is a packed, append-only bit vector. Bits are stored MSB-first
// within each byte; the final byte may be partially filled.
type Bitstring struct {
	data []byte
	n    int
}

// NewBitstring returns an empty Bitstring.
func NewBitstring() *Bitstring {
	return &Bitstring{}
}

// Len returns the number of bits in the string.
func (b *Bitstring) Len() int {
	return b.n
}

// AppendBit appends a single bit. Any non-zero value is stored as 1.
func (b *Bitstring) AppendBit(bit uint8) {
	if b.n%8 == 0 {
		b.data = append(b.data, 0)
	}
	if bit != 0 {
		b.data[b.n/8] |= 1 << (7 - uint(b.n%8))
	}
	b.n++
}

// AppendUint appends the low `width` bits of v, most significant bit first.
func (b *Bitstring) AppendUint(v uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		b.AppendBit(uint8(v >> uint(i) & 1))
	}
}

// AppendZeros appends `count` zero bits.
func (b *Bitstring) AppendZeros(count int) {
	for i := 0; i < count; i++ {
		b.AppendBit(0)
	}
}

// Bit returns the i-th bit. It panics if i is out of range, matching the
// behaviour of a slice index.
func (b *Bitstring) Bit(i int) uint8 {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("codec: bit index %d out of range [0,%d)", i, b.n))
	}
	return b.data[i/8] >> (7 - uint(i%8)) & 1
}

// AppendBitstring appends all bits of other to b.
func (b *Bitstring) AppendBitstring(other *Bitstring) {
	for i := 0; i < other.n; i++ {
		b.AppendBit(other.Bit(i))
	}
}

// Equal reports whether two Bitstrings hold the same bit sequence.
func (b *Bitstring) Equal(other *Bitstring) bool {
	if b.n != other.n {
		return false
	}
	for i := 0; i < b.n; i++ {
		if b.Bit(i) != other.Bit(i) {
			return false
		}
	}
	return true
}

// String renders the bit sequence as ASCII '0'/'1' characters.
func (b *Bitstring) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}

// ParseBitstring builds a Bitstring from a string of '0' and '1' characters.
func ParseBitstring(s string) (*Bitstring, error) {
	b := NewBitstring()
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			b.AppendBit(0)
		case '1':
			b.AppendBit(1)
		default:
			return nil, fmt.Errorf("parsing bitstring: invalid character %q at offset %d", s[i], i)
		}
	}
	return b, nil
}

// MarshalBinary returns the persisted form of the Bitstring: an 8-byte
// big-endian bit count followed by the packed payload bytes. The trailing
// unused bits of the final byte are always zero, so the mapping is
// bit-exact and reversible.
func (b *Bitstring) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8+len(b.data))
	binary.BigEndian.PutUint64(out[:8], uint64(b.n))
	copy(out[8:], b.data)
	return out, nil
}

// UnmarshalBinary restores a Bitstring from its MarshalBinary form.
func (b *Bitstring) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("unmarshaling bitstring: %d bytes is shorter than the 8-byte header", len(data))
	}
	n := binary.BigEndian.Uint64(data[:8])
	payload := data[8:]
	if want := (n + 7) / 8; uint64(len(payload)) != want {
		return fmt.Errorf("unmarshaling bitstring: %d bits needs %d payload bytes, got %d", n, want, len(payload))
	}
	b.data = append([]byte(nil), payload...)
	b.n = int(n)
	return nil
}

// BitReader consumes a Bitstring from left to right.
type BitReader struct {
	bs  *Bitstring
	pos int
}

// NewBitReader returns a reader positioned at the first bit of bs.
func NewBitReader(bs *Bitstring) *BitReader {
	return &BitReader{bs: bs}
}

// Remaining returns the number of unread bits.
func (r *BitReader) Remaining() int {
	return r.bs.n - r.pos
}

// ReadBit returns the next bit, or false if the string is exhausted.
func (r *BitReader) ReadBit() (uint8, bool) {
	if r.pos >= r.bs.n {
		return 0, false
	}
	bit := r.bs.Bit(r.pos)
	r.pos++
	return bit, true
}

// ReadUint reads `width` bits MSB-first as an unsigned integer. It returns
// false without consuming anything if fewer than `width` bits remain.
func (r *BitReader) ReadUint(width int) (uint64, bool) {
	if width < 0 || width > 64 || r.Remaining() < width {
		return 0, false
	}
	var v uint64
	for i := 0; i < width; i++ {
		bit, _ := r.ReadBit()
		v = v<<1 | uint64(bit)
	}
	return v, true
}
