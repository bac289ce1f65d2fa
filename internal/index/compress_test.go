package index

import (
	"errors"
	"reflect"
	"testing"

	"github.com/indexforge/webindex/internal/codec"
)

func TestCompressRoundTrip(t *testing.T) {
	lists := []PostingList{
		{1},
		{1, 2, 3},
		{1, 2, 4},
		{5, 17, 18, 300, 301, 5000},
		{1, 1000000, 1000001},
	}
	for _, kind := range []codec.Kind{codec.KindGamma, codec.KindDelta} {
		c, err := codec.ForKind(kind)
		if err != nil {
			t.Fatal(err)
		}
		for _, postings := range lists {
			bs, err := Compress(postings, c)
			if err != nil {
				t.Fatalf("%s compress %v: %v", kind, postings, err)
			}
			got := Decompress(bs, c)
			if !reflect.DeepEqual(got, postings) {
				t.Errorf("%s round trip of %v = %v", kind, postings, got)
			}
		}
	}
}

func TestCompressGapValues(t *testing.T) {
	// {1,2,4} gap-encodes as 1,1,2: "1" "1" "010" under gamma.
	c := codec.Gamma{}
	bs, err := Compress(PostingList{1, 2, 4}, c)
	if err != nil {
		t.Fatal(err)
	}
	if got := bs.String(); got != "11010" {
		t.Fatalf("gamma bitstring for {1,2,4} = %q, want %q", got, "11010")
	}
}

func TestCompressEmptyList(t *testing.T) {
	for _, kind := range []codec.Kind{codec.KindGamma, codec.KindDelta} {
		c, err := codec.ForKind(kind)
		if err != nil {
			t.Fatal(err)
		}
		bs, err := Compress(nil, c)
		if err != nil {
			t.Fatalf("%s compress empty: %v", kind, err)
		}
		if bs.Len() != 0 {
			t.Errorf("%s compress empty produced %d bits", kind, bs.Len())
		}
		if postings := Decompress(codec.NewBitstring(), c); len(postings) != 0 {
			t.Errorf("%s decompress empty = %v", kind, postings)
		}
	}
}

func TestCompressRejectsInvalidPostings(t *testing.T) {
	for _, postings := range []PostingList{{0, 1, 2}, {3, 3}, {4, 2}} {
		_, err := Compress(postings, codec.Gamma{})
		if !errors.Is(err, codec.ErrInvalidInteger) {
			t.Errorf("Compress(%v) = %v, want ErrInvalidInteger", postings, err)
		}
	}
}

func TestCompressIndexRoundTrip(t *testing.T) {
	idx := Build(map[int64]string{
		1: "hello world hello",
		2: "test hello",
		3: "world wide index compression",
	})
	for _, kind := range []codec.Kind{codec.KindGamma, codec.KindDelta} {
		compressed, failed, err := CompressIndex(idx, kind)
		if err != nil {
			t.Fatalf("%s CompressIndex: %v", kind, err)
		}
		if failed != nil {
			t.Fatalf("%s CompressIndex reported failures: %v", kind, failed)
		}
		if len(compressed) != len(idx) {
			t.Fatalf("%s compressed %d terms, index has %d", kind, len(compressed), len(idx))
		}
		back, err := DecompressIndex(compressed, kind)
		if err != nil {
			t.Fatalf("%s DecompressIndex: %v", kind, err)
		}
		if !reflect.DeepEqual(back, idx) {
			t.Errorf("%s index round trip mismatch:\n got %v\nwant %v", kind, back, idx)
		}
	}
}

func TestCompressIndexPerTermFailure(t *testing.T) {
	idx := Index{
		"good":  {1, 2, 3},
		"bad":   {0, 5},
		"worse": {7, 6},
	}
	compressed, failed, err := CompressIndex(idx, codec.KindGamma)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) != 1 {
		t.Fatalf("compressed terms = %v, want only \"good\"", compressed)
	}
	if _, ok := compressed["good"]; !ok {
		t.Fatal("term \"good\" missing from compressed output")
	}
	if len(failed) != 2 {
		t.Fatalf("failed terms = %v, want bad and worse", failed)
	}
	for _, term := range []string{"bad", "worse"} {
		if !errors.Is(failed[term], codec.ErrInvalidInteger) {
			t.Errorf("failure for %q = %v, want ErrInvalidInteger", term, failed[term])
		}
	}
}

func TestCompressIndexUnknownKind(t *testing.T) {
	_, _, err := CompressIndex(Index{}, "golomb")
	if !errors.Is(err, codec.ErrUnknownKind) {
		t.Fatalf("CompressIndex with unknown kind: %v", err)
	}
	_, err = DecompressIndex(Compressed{}, "golomb")
	if !errors.Is(err, codec.ErrUnknownKind) {
		t.Fatalf("DecompressIndex with unknown kind: %v", err)
	}
}
