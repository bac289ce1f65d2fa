// Package server exposes the indexing and search HTTP API. It wires the
// crawler, index builder, codec layer, postings store, and term cache
// together behind two endpoints: POST /api/v1/index and GET /api/v1/search.
package server

import (
	"time"

	"github.com/indexforge/webindex/internal/codec"
)

// IndexRequest is the JSON body accepted by the index endpoint. Exactly one
// of URLs and Documents must be set: URLs are crawled and assigned
// sequential document ids starting at 1, while Documents carry
// caller-assigned ids directly.
type IndexRequest struct {
	URLs      []string         `json:"urls,omitempty"`
	Documents map[int64]string `json:"documents,omitempty"`
	Codec     codec.Kind       `json:"codec,omitempty"`
}

// IndexResponse reports what an indexing request accomplished.
type IndexResponse struct {
	Documents    int               `json:"documents"`
	IndexedTerms int               `json:"indexed_terms"`
	Codec        codec.Kind        `json:"codec"`
	TotalBits    int64             `json:"total_bits"`
	FailedTerms  map[string]string `json:"failed_terms,omitempty"`
	FailedURLs   map[string]string `json:"failed_urls,omitempty"`
	ElapsedMs    int64             `json:"elapsed_ms"`
}

// SearchResponse is the plaintext posting list for one term.
type SearchResponse struct {
	Term     string     `json:"term"`
	Codec    codec.Kind `json:"codec"`
	Postings []int64    `json:"postings"`
	CacheHit bool       `json:"cache_hit"`
}

// InvalidationEvent is published to Kafka after a re-index so that every
// instance drops its stale term cache entries.
type InvalidationEvent struct {
	Codec     codec.Kind `json:"codec"`
	Terms     []string   `json:"terms"`
	IndexedAt time.Time  `json:"indexed_at"`
}
