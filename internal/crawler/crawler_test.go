package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/indexforge/webindex/pkg/config"
	apperrors "github.com/indexforge/webindex/pkg/errors"
)

func testConfig() config.CrawlerConfig {
	return config.CrawlerConfig{
		FetchTimeout:     2 * time.Second,
		MaxParallel:      4,
		MaxBodyBytes:     1 << 20,
		RetryAttempts:    1,
		FailureThreshold: 100,
		BreakerReset:     time.Second,
		UserAgent:        "webindex-test",
	}
}

func TestExtractText(t *testing.T) {
	cases := []struct {
		name string
		page string
		want string
	}{
		{
			"tags stripped",
			"<html><body><h1>Hello</h1><p>test hello</p></body></html>",
			"Hello test hello",
		},
		{
			"script and style dropped",
			"<script>var x = 1;</script><style>p{color:red}</style><p>visible</p>",
			"visible",
		},
		{
			"entities unescaped",
			"<p>fish &amp; chips</p>",
			"fish & chips",
		},
		{
			"plain text unchanged",
			"no markup here",
			"no markup here",
		},
		{
			"empty",
			"",
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractText(tc.page); got != tc.want {
				t.Errorf("ExtractText = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			w.Write([]byte("<html><body>Hello test hello</body></html>"))
		case "/b":
			w.Write([]byte("plain body"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(testConfig())
	docs, failed := f.FetchAll(context.Background(), []string{srv.URL + "/a", srv.URL + "/b"})
	if failed != nil {
		t.Fatalf("unexpected failures: %v", failed)
	}
	if docs[1] != "Hello test hello" {
		t.Errorf("doc 1 = %q", docs[1])
	}
	if docs[2] != "plain body" {
		t.Errorf("doc 2 = %q", docs[2])
	}
}

func TestFetchAllReportsFailuresPerURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.Write([]byte("fine"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(testConfig())
	badURL := srv.URL + "/broken"
	docs, failed := f.FetchAll(context.Background(), []string{srv.URL + "/ok", badURL})
	if len(docs) != 1 || docs[1] != "fine" {
		t.Fatalf("docs = %v", docs)
	}
	if !errors.Is(failed[badURL], apperrors.ErrFetchFailed) {
		t.Fatalf("failure for %s = %v, want ErrFetchFailed", badURL, failed[badURL])
	}
}

func TestFetchRespectsBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("word ", 100)))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxBodyBytes = 10
	f := New(cfg)
	text, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(text) > 10 {
		t.Errorf("text %q exceeds body limit", text)
	}
}
