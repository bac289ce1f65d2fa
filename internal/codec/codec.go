package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInteger is returned when an encoder is given a value below 1.
	// Universal codes represent positive integers only.
	ErrInvalidInteger = errors.New("universal codes are defined for positive integers only")

	// ErrTruncated is returned by strict decoding when leftover bits do not
	// form a complete codeword.
	ErrTruncated = errors.New("bitstring ends mid-codeword")

	// ErrUnknownKind is returned for codec kinds other than gamma and delta.
	ErrUnknownKind = errors.New("unknown codec kind")
)

// Kind names one of the supported universal codes. It is the value persisted
// in the postings store and accepted in API requests.
type Kind string

const (
	KindGamma Kind = "gamma"
	KindDelta Kind = "delta"
)

// Valid reports whether k names a supported codec.
func (k Kind) Valid() bool {
	return k == KindGamma || k == KindDelta
}

// Codec encodes single positive integers into self-delimiting codewords and
// decodes one codeword from a BitReader. Implementations are stateless and
// safe for concurrent use.
type Codec interface {
	Kind() Kind

	// AppendEncode appends the codeword for n to bs. n must be >= 1;
	// anything else fails with ErrInvalidInteger and leaves bs unchanged.
	AppendEncode(bs *Bitstring, n int64) error

	// DecodeOne reads a single codeword from r. It returns ok=false when the
	// remaining bits do not form a complete codeword; the reader position is
	// then unspecified and decoding must stop.
	DecodeOne(r *BitReader) (int64, bool)
}

// ForKind returns the Codec implementation for k.
func ForKind(k Kind) (Codec, error) {
	switch k {
	case KindGamma:
		return Gamma{}, nil
	case KindDelta:
		return Delta{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
}

// Encode returns the codeword for a single value as a fresh Bitstring.
func Encode(c Codec, n int64) (*Bitstring, error) {
	bs := NewBitstring()
	if err := c.AppendEncode(bs, n); err != nil {
		return nil, err
	}
	return bs, nil
}

// DecodeAll greedily parses codewords left to right and returns the decoded
// values. Trailing bits too short to form a complete codeword are dropped
// silently; a per-term bitstring produced by the compressor never has any.
func DecodeAll(c Codec, bs *Bitstring) []int64 {
	values := make([]int64, 0)
	r := NewBitReader(bs)
	for r.Remaining() > 0 {
		v, ok := c.DecodeOne(r)
		if !ok {
			break
		}
		values = append(values, v)
	}
	return values
}

// DecodeAllStrict behaves like DecodeAll but reports ErrTruncated when the
// bitstring does not end exactly on a codeword boundary. Useful for callers
// that want to detect truncation bugs upstream.
func DecodeAllStrict(c Codec, bs *Bitstring) ([]int64, error) {
	values := make([]int64, 0)
	r := NewBitReader(bs)
	for r.Remaining() > 0 {
		v, ok := c.DecodeOne(r)
		if !ok {
			return values, fmt.Errorf("%s decode after %d values: %w", c.Kind(), len(values), ErrTruncated)
		}
		values = append(values, v)
	}
	return values, nil
}
