package index

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/indexforge/webindex/internal/codec"
)

// Compress gap-encodes a posting list into a single bitstring of
// concatenated codewords. The list is validated first: strictly ascending
// ids with a first id >= 1, so every gap is a positive integer. An empty
// list yields an empty bitstring.
func Compress(postings PostingList, c codec.Codec) (*codec.Bitstring, error) {
	if err := postings.Validate(); err != nil {
		return nil, err
	}
	bs := codec.NewBitstring()
	prev := int64(0)
	for _, id := range postings {
		if err := c.AppendEncode(bs, id-prev); err != nil {
			return nil, fmt.Errorf("encoding gap for document %d: %w", id, err)
		}
		prev = id
	}
	return bs, nil
}

// Decompress decodes the gap sequence from a bitstring and reconstructs
// the posting list by a running prefix sum from 0. It is the exact inverse
// of Compress for any bitstring Compress can produce. An empty bitstring
// yields an empty posting list.
func Decompress(bs *codec.Bitstring, c codec.Codec) PostingList {
	gaps := codec.DecodeAll(c, bs)
	postings := make(PostingList, 0, len(gaps))
	sum := int64(0)
	for _, gap := range gaps {
		sum += gap
		postings = append(postings, sum)
	}
	return postings
}

// CompressIndex compresses every posting list of idx with the named codec,
// fanning the terms out across a bounded worker pool. Terms are independent,
// so workers share nothing but the output maps. Failures never abort the
// batch: the second return value maps each failing term to its error while
// all other terms compress normally.
func CompressIndex(idx Index, kind codec.Kind) (Compressed, map[string]error, error) {
	c, err := codec.ForKind(kind)
	if err != nil {
		return nil, nil, err
	}

	compressed := make(Compressed, len(idx))
	failed := make(map[string]error)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for term, postings := range idx {
		g.Go(func() error {
			bs, err := Compress(postings, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[term] = err
				return nil
			}
			compressed[term] = bs
			return nil
		})
	}
	g.Wait()

	if len(failed) == 0 {
		failed = nil
	}
	return compressed, failed, nil
}

// DecompressIndex reverses CompressIndex, producing an index with the same
// keys and the original posting lists.
func DecompressIndex(compressed Compressed, kind codec.Kind) (Index, error) {
	c, err := codec.ForKind(kind)
	if err != nil {
		return nil, err
	}

	idx := make(Index, len(compressed))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for term, bs := range compressed {
		g.Go(func() error {
			postings := Decompress(bs, c)
			mu.Lock()
			idx[term] = postings
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return idx, nil
}
