// Package benchmark contains Go benchmarks for the codec layer, the index
// builder, and the tokenizer, measuring throughput and allocation behaviour.
package benchmark

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/indexforge/webindex/internal/codec"
)

var codecs = []struct {
	name string
	c    codec.Codec
}{
	{"gamma", codec.Gamma{}},
	{"delta", codec.Delta{}},
}

// BenchmarkEncode measures single-value encode cost across value magnitudes.
func BenchmarkEncode(b *testing.B) {
	values := []int64{1, 13, 255, 65537, 1 << 30, 1 << 50}
	for _, bench := range codecs {
		for _, v := range values {
			b.Run(fmt.Sprintf("%s/n_%d", bench.name, v), func(b *testing.B) {
				b.ReportAllocs()
				bs := codec.NewBitstring()
				for i := 0; i < b.N; i++ {
					if err := bench.c.AppendEncode(bs, v); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkDecodeAll measures bulk decode throughput over sequences of
// varying length.
func BenchmarkDecodeAll(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	for _, bench := range codecs {
		for _, size := range sizes {
			b.Run(fmt.Sprintf("%s/values_%d", bench.name, size), func(b *testing.B) {
				rng := rand.New(rand.NewSource(1))
				bs := codec.NewBitstring()
				for i := 0; i < size; i++ {
					if err := bench.c.AppendEncode(bs, rng.Int63n(1<<20)+1); err != nil {
						b.Fatal(err)
					}
				}
				b.ReportAllocs()
				b.SetBytes(int64(bs.Len() / 8))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					decoded := codec.DecodeAll(bench.c, bs)
					if len(decoded) != size {
						b.Fatalf("decoded %d values, want %d", len(decoded), size)
					}
				}
			})
		}
	}
}

// BenchmarkDecodeAllParallel measures concurrent decode throughput. Decoding
// only reads the bitstring, so readers share one buffer.
func BenchmarkDecodeAllParallel(b *testing.B) {
	g := codec.Gamma{}
	bs := codec.NewBitstring()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if err := g.AppendEncode(bs, rng.Int63n(1<<16)+1); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			decoded := codec.DecodeAll(g, bs)
			_ = decoded
		}
	})
}

// BenchmarkBitstringMarshal measures the cost of the persisted form round
// trip at representative sizes.
func BenchmarkBitstringMarshal(b *testing.B) {
	sizes := []int{64, 1024, 65536}
	for _, bits := range sizes {
		b.Run(fmt.Sprintf("bits_%d", bits), func(b *testing.B) {
			bs := codec.NewBitstring()
			for i := 0; i < bits; i++ {
				bs.AppendBit(uint8(i % 2))
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				data, err := bs.MarshalBinary()
				if err != nil {
					b.Fatal(err)
				}
				var out codec.Bitstring
				if err := out.UnmarshalBinary(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
