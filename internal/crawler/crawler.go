// Package crawler fetches web pages and reduces them to plain text for
// indexing. Fetches run concurrently with bounded parallelism, retry with
// backoff, and a shared circuit breaker so a dead upstream does not burn
// the whole retry budget per URL.
package crawler

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/indexforge/webindex/pkg/config"
	apperrors "github.com/indexforge/webindex/pkg/errors"
	"github.com/indexforge/webindex/pkg/resilience"
)

// Fetcher downloads pages and extracts their text.
type Fetcher struct {
	client  *http.Client
	cfg     config.CrawlerConfig
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

// New creates a Fetcher from crawler configuration.
func New(cfg config.CrawlerConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: cfg.FetchTimeout},
		cfg:    cfg,
		breaker: resilience.NewCircuitBreaker("crawler", resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			ResetTimeout:     cfg.BreakerReset,
		}),
		logger: slog.Default().With("component", "crawler"),
	}
}

// FetchAll downloads every URL concurrently and returns the extracted text
// keyed by document id. Ids are assigned by URL position, starting at 1 so
// the first posting of any term satisfies the codec's positive-gap
// precondition. URLs that fail after retries are reported in the second
// return value and produce no document.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) (map[int64]string, map[string]error) {
	docs := make(map[int64]string, len(urls))
	failed := make(map[string]error)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(f.cfg.MaxParallel)
	for i, url := range urls {
		docID := int64(i) + 1
		g.Go(func() error {
			text, err := f.Fetch(ctx, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[url] = err
				return nil
			}
			docs[docID] = text
			return nil
		})
	}
	g.Wait()

	if len(failed) == 0 {
		failed = nil
	}
	return docs, failed
}

// Fetch downloads a single URL and returns its text content. Transient
// failures are retried with backoff behind the circuit breaker.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var text string
	retryCfg := resilience.RetryConfig{MaxAttempts: f.cfg.RetryAttempts}
	err := resilience.Retry(ctx, "fetch "+url, retryCfg, func() error {
		return f.breaker.Execute(func() error {
			var fetchErr error
			text, fetchErr = f.fetchOnce(ctx, url)
			return fetchErr
		})
	})
	if err != nil {
		f.logger.Warn("page fetch failed", "url", url, "error", err)
		return "", fmt.Errorf("%w: %s: %w", apperrors.ErrFetchFailed, url, err)
	}
	f.logger.Debug("page fetched", "url", url, "text_bytes", len(text))
	return text, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return ExtractText(string(body)), nil
}

// ExtractText strips HTML markup from a page, dropping script and style
// blocks wholesale, and collapses the remaining whitespace. The tokenizer
// downstream discards punctuation, so this stays deliberately simple.
func ExtractText(page string) string {
	var sb strings.Builder
	sb.Grow(len(page) / 2)

	inTag := false
	skipUntil := ""
	lower := strings.ToLower(page)
	for i := 0; i < len(page); i++ {
		if skipUntil != "" {
			if strings.HasPrefix(lower[i:], skipUntil) {
				i += len(skipUntil) - 1
				skipUntil = ""
			}
			continue
		}
		switch {
		case page[i] == '<':
			if strings.HasPrefix(lower[i:], "<script") {
				skipUntil = "</script>"
			} else if strings.HasPrefix(lower[i:], "<style") {
				skipUntil = "</style>"
			} else {
				inTag = true
			}
		case page[i] == '>' && inTag:
			inTag = false
			sb.WriteByte(' ')
		case !inTag:
			sb.WriteByte(page[i])
		}
	}
	return strings.Join(strings.Fields(html.UnescapeString(sb.String())), " ")
}
