package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/indexforge/webindex/internal/codec"
	"github.com/indexforge/webindex/internal/index"
	"github.com/indexforge/webindex/internal/index/tokenizer"
	apperrors "github.com/indexforge/webindex/pkg/errors"
	"github.com/indexforge/webindex/pkg/kafka"
	"github.com/indexforge/webindex/pkg/logger"
	"github.com/indexforge/webindex/pkg/metrics"
)

// PostingSource is the store surface the handler needs.
type PostingSource interface {
	SaveIndex(ctx context.Context, kind codec.Kind, compressed index.Compressed, idx index.Index) error
	GetTerm(ctx context.Context, term string, kind codec.Kind) (*codec.Bitstring, error)
	TermCount(ctx context.Context) (int64, error)
}

// PageFetcher is the crawler surface the handler needs.
type PageFetcher interface {
	FetchAll(ctx context.Context, urls []string) (map[int64]string, map[string]error)
}

// EventPublisher publishes invalidation events after a re-index.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Handler implements the indexing and search endpoints.
type Handler struct {
	store        PostingSource
	fetcher      PageFetcher
	cache        *TermCache
	publisher    EventPublisher
	metrics      *metrics.Metrics
	defaultCodec codec.Kind
	maxDocuments int
	logger       *slog.Logger
}

// New creates a Handler. cache, publisher, and m may be nil; the handler
// then runs without caching, invalidation events, or metrics.
func New(store PostingSource, fetcher PageFetcher, cache *TermCache, publisher EventPublisher, m *metrics.Metrics, defaultCodec codec.Kind, maxDocuments int) *Handler {
	return &Handler{
		store:        store,
		fetcher:      fetcher,
		cache:        cache,
		publisher:    publisher,
		metrics:      m,
		defaultCodec: defaultCodec,
		maxDocuments: maxDocuments,
		logger:       slog.Default().With("component", "api-handler"),
	}
}

// Index handles POST /api/v1/index: crawl (or accept) documents, build the
// inverted index, compress every posting list, and persist the result.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if (len(req.URLs) == 0) == (len(req.Documents) == 0) {
		h.writeError(w, http.StatusBadRequest, "exactly one of urls and documents must be provided")
		return
	}
	kind := req.Codec
	if kind == "" {
		kind = h.defaultCodec
	}
	if !kind.Valid() {
		h.writeError(w, http.StatusBadRequest, "codec must be gamma or delta")
		return
	}
	if len(req.URLs) > h.maxDocuments || len(req.Documents) > h.maxDocuments {
		h.writeError(w, http.StatusBadRequest, "too many documents in one request")
		return
	}

	docs := req.Documents
	var failedURLs map[string]error
	if len(req.URLs) > 0 {
		docs, failedURLs = h.fetcher.FetchAll(ctx, req.URLs)
		if h.metrics != nil {
			h.metrics.PagesFetchedTotal.WithLabelValues("ok").Add(float64(len(docs)))
			h.metrics.PagesFetchedTotal.WithLabelValues("error").Add(float64(len(failedURLs)))
		}
		if len(docs) == 0 {
			h.writeError(w, apperrors.HTTPStatusCode(apperrors.ErrFetchFailed), "no page could be fetched")
			return
		}
	}

	idx := index.Build(docs)
	compressed, failedTerms, err := index.CompressIndex(idx, kind)
	if err != nil {
		log.Error("index compression failed", "codec", kind, "error", err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveIndex(ctx, kind, compressed, idx); err != nil {
		log.Error("saving index failed", "codec", kind, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "saving index failed")
		return
	}
	h.publishInvalidation(ctx, kind, compressed)
	h.recordIndexMetrics(kind, docs, compressed, failedTerms)

	resp := &IndexResponse{
		Documents:    len(docs),
		IndexedTerms: len(compressed),
		Codec:        kind,
		ElapsedMs:    time.Since(start).Milliseconds(),
	}
	for _, bs := range compressed {
		resp.TotalBits += int64(bs.Len())
	}
	if len(failedTerms) > 0 {
		resp.FailedTerms = make(map[string]string, len(failedTerms))
		for term, termErr := range failedTerms {
			resp.FailedTerms[term] = termErr.Error()
		}
	}
	if len(failedURLs) > 0 {
		resp.FailedURLs = make(map[string]string, len(failedURLs))
		for url, urlErr := range failedURLs {
			resp.FailedURLs[url] = urlErr.Error()
		}
	}

	log.Info("corpus indexed",
		"documents", resp.Documents,
		"terms", resp.IndexedTerms,
		"codec", kind,
		"total_bits", resp.TotalBits,
		"failed_terms", len(failedTerms),
		"failed_urls", len(failedURLs),
		"elapsed_ms", resp.ElapsedMs,
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// Search handles GET /api/v1/search: look up one term's posting list,
// decompressing the stored bitstring (through the cache when available).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	term := tokenizer.NormalizeTerm(r.URL.Query().Get("term"))
	if term == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'term' is required")
		return
	}
	kind := codec.Kind(r.URL.Query().Get("codec"))
	if kind == "" {
		kind = h.defaultCodec
	}
	if !kind.Valid() {
		h.writeError(w, http.StatusBadRequest, "codec must be gamma or delta")
		return
	}

	lookup := func() ([]int64, error) {
		bs, err := h.store.GetTerm(ctx, term, kind)
		if err != nil {
			return nil, err
		}
		c, err := codec.ForKind(kind)
		if err != nil {
			return nil, err
		}
		return index.Decompress(bs, c), nil
	}

	var postings []int64
	var cacheHit bool
	var err error
	if h.cache != nil {
		postings, cacheHit, err = h.cache.GetOrCompute(ctx, term, kind, lookup)
	} else {
		postings, err = lookup()
	}
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("term lookup failed", "term", term, "codec", kind, "error", err)
		}
		h.recordSearchMetrics(status, cacheHit)
		h.writeError(w, status, err.Error())
		return
	}
	h.recordSearchMetrics(http.StatusOK, cacheHit)

	log.Info("term lookup completed",
		"term", term,
		"codec", kind,
		"postings", len(postings),
		"cache_hit", cacheHit,
	)
	h.writeJSON(w, http.StatusOK, &SearchResponse{
		Term:     term,
		Codec:    kind,
		Postings: postings,
		CacheHit: cacheHit,
	})
}

// Stats handles GET /api/v1/stats with store and cache counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.TermCount(r.Context())
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), "stats unavailable")
		return
	}
	stats := map[string]any{"stored_terms": count}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		stats["cache_hits"] = hits
		stats["cache_misses"] = misses
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) publishInvalidation(ctx context.Context, kind codec.Kind, compressed index.Compressed) {
	if h.publisher == nil {
		return
	}
	terms := make([]string, 0, len(compressed))
	for term := range compressed {
		terms = append(terms, term)
	}
	event := kafka.Event{
		Key: string(kind),
		Value: InvalidationEvent{
			Codec:     kind,
			Terms:     terms,
			IndexedAt: time.Now().UTC(),
		},
	}
	// Stale cache entries expire by TTL anyway; a lost event is not fatal.
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Error("publishing invalidation event failed", "codec", kind, "terms", len(terms), "error", err)
	}
}

func (h *Handler) recordIndexMetrics(kind codec.Kind, docs map[int64]string, compressed index.Compressed, failedTerms map[string]error) {
	if h.metrics == nil {
		return
	}
	h.metrics.DocsIndexedTotal.Add(float64(len(docs)))
	h.metrics.TermsCompressedTotal.WithLabelValues(string(kind)).Add(float64(len(compressed)))
	h.metrics.CodecErrorsTotal.WithLabelValues(string(kind)).Add(float64(len(failedTerms)))
	for _, bs := range compressed {
		h.metrics.CompressedBits.WithLabelValues(string(kind)).Observe(float64(bs.Len()))
	}
}

func (h *Handler) recordSearchMetrics(status int, cacheHit bool) {
	if h.metrics == nil {
		return
	}
	switch {
	case status == http.StatusOK:
		h.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
	case status == http.StatusNotFound:
		h.metrics.SearchQueriesTotal.WithLabelValues("miss").Inc()
	default:
		h.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
	}
	if cacheHit {
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
