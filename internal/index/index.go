// Package index builds term-to-document inverted indexes and compresses
// their posting lists with the universal codes from internal/codec. Posting
// lists are gap-encoded: consecutive differences between document ids are
// small on average, which is exactly the bias the Elias codes reward.
package index

import (
	"fmt"
	"sort"

	"github.com/indexforge/webindex/internal/codec"
	"github.com/indexforge/webindex/internal/index/tokenizer"
)

// PostingList is the sorted, duplicate-free sequence of document ids that
// contain a term. Document ids are caller-assigned; the first id must be
// at least 1 for gap encoding to work.
type PostingList []int64

// Index maps each term to its posting list. It is built once per corpus
// snapshot and not mutated afterwards.
type Index map[string]PostingList

// Compressed maps each term to the bitstring holding its gap-encoded
// posting list.
type Compressed map[string]*codec.Bitstring

// Build constructs the inverted index for a corpus given as document id ->
// raw text. Every term's posting list is canonicalised to the ascending
// set of distinct ids. Documents with no extractable terms contribute
// nothing; terms never map to empty lists. Build never fails.
func Build(docs map[int64]string) Index {
	idx := make(Index)
	for id, text := range docs {
		for _, term := range tokenizer.Tokenize(text) {
			postings := idx[term]
			if n := len(postings); n > 0 && postings[n-1] == id {
				continue
			}
			idx[term] = append(postings, id)
		}
	}
	for term, postings := range idx {
		idx[term] = canonicalize(postings)
	}
	return idx
}

// canonicalize sorts a posting list and removes duplicates in place. The
// per-document skip in Build only avoids runs of the same id; map iteration
// order makes the final sort+dedup pass the actual correctness guarantee.
func canonicalize(postings PostingList) PostingList {
	sort.Slice(postings, func(i, j int) bool { return postings[i] < postings[j] })
	out := postings[:0]
	for _, id := range postings {
		if n := len(out); n > 0 && out[n-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Validate checks the compression preconditions: strictly ascending order
// and a first id of at least 1 (the gap against the implicit baseline 0
// must be positive). Violations are reported as codec.ErrInvalidInteger so
// callers can treat them uniformly with encoder failures.
func (p PostingList) Validate() error {
	if len(p) == 0 {
		return nil
	}
	if p[0] < 1 {
		return fmt.Errorf("first document id %d yields a non-positive gap: %w", p[0], codec.ErrInvalidInteger)
	}
	for i := 1; i < len(p); i++ {
		if p[i] <= p[i-1] {
			return fmt.Errorf("document ids not strictly increasing at index %d (%d after %d): %w",
				i, p[i], p[i-1], codec.ErrInvalidInteger)
		}
	}
	return nil
}
