// Command indextool builds a compressed index from a directory of .txt
// files without running the HTTP service. It reports the bit cost of each
// codec side by side and can optionally persist one codec's output.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/indexforge/webindex/internal/codec"
	"github.com/indexforge/webindex/internal/index"
	"github.com/indexforge/webindex/internal/store"
	"github.com/indexforge/webindex/pkg/config"
	"github.com/indexforge/webindex/pkg/logger"
	"github.com/indexforge/webindex/pkg/postgres"
)

func main() {
	dir := flag.String("dir", "", "directory of .txt documents to index")
	save := flag.String("save", "", "persist the index compressed with this codec (gamma or delta)")
	configPath := flag.String("config", "configs/development.yaml", "path to config file (used with -save)")
	top := flag.Int("top", 10, "number of most frequent terms to print")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: indextool -dir <path> [-save gamma|delta]")
		os.Exit(1)
	}

	logger.Setup("info", "text")

	docs, err := loadDocuments(*dir)
	if err != nil {
		slog.Error("failed to load documents", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		slog.Error("no .txt documents found", "dir", *dir)
		os.Exit(1)
	}

	idx := index.Build(docs)
	slog.Info("index built", "documents", len(docs), "terms", len(idx))

	results := make(map[codec.Kind]index.Compressed, 2)
	for _, kind := range []codec.Kind{codec.KindGamma, codec.KindDelta} {
		compressed, failed, err := index.CompressIndex(idx, kind)
		if err != nil {
			slog.Error("compression failed", "codec", kind, "error", err)
			os.Exit(1)
		}
		for term, termErr := range failed {
			slog.Warn("term skipped", "codec", kind, "term", term, "error", termErr)
		}
		results[kind] = compressed
	}
	printReport(idx, results, *top)

	if *save != "" {
		kind := codec.Kind(*save)
		if !kind.Valid() {
			slog.Error("unknown codec for -save", "codec", *save)
			os.Exit(1)
		}
		if err := persist(*configPath, kind, results[kind], idx); err != nil {
			slog.Error("failed to persist index", "codec", kind, "error", err)
			os.Exit(1)
		}
		slog.Info("index persisted", "codec", kind, "terms", len(results[kind]))
	}
}

// loadDocuments assigns ids 1..n in lexicographic filename order so runs
// over the same directory are reproducible.
func loadDocuments(dir string) (map[int64]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make(map[int64]string, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		docs[int64(i+1)] = string(data)
	}
	return docs, nil
}

func printReport(idx index.Index, results map[codec.Kind]index.Compressed, top int) {
	var gammaBits, deltaBits, plainBits int64
	for term, postings := range idx {
		plainBits += int64(len(postings)) * 64
		if bs, ok := results[codec.KindGamma][term]; ok {
			gammaBits += int64(bs.Len())
		}
		if bs, ok := results[codec.KindDelta][term]; ok {
			deltaBits += int64(bs.Len())
		}
	}

	fmt.Printf("terms: %d\n", len(idx))
	fmt.Printf("plain 64-bit postings: %d bits\n", plainBits)
	fmt.Printf("gamma: %d bits (%.1f%% of plain)\n", gammaBits, percent(gammaBits, plainBits))
	fmt.Printf("delta: %d bits (%.1f%% of plain)\n", deltaBits, percent(deltaBits, plainBits))

	type termFreq struct {
		term string
		freq int
	}
	freqs := make([]termFreq, 0, len(idx))
	for term, postings := range idx {
		freqs = append(freqs, termFreq{term, len(postings)})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].freq != freqs[j].freq {
			return freqs[i].freq > freqs[j].freq
		}
		return freqs[i].term < freqs[j].term
	})
	if top > len(freqs) {
		top = len(freqs)
	}
	fmt.Printf("\ntop %d terms by document frequency:\n", top)
	for _, tf := range freqs[:top] {
		gamma := results[codec.KindGamma][tf.term]
		delta := results[codec.KindDelta][tf.term]
		fmt.Printf("  %-20s docs=%-6d gamma=%d bits  delta=%d bits\n",
			tf.term, tf.freq, gamma.Len(), delta.Len())
	}
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

func persist(configPath string, kind codec.Kind, compressed index.Compressed, idx index.Index) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	postingStore := store.New(db)
	if err := postingStore.Migrate(ctx); err != nil {
		return err
	}
	return postingStore.SaveIndex(ctx, kind, compressed, idx)
}
