package server

import (
	"context"
	"log/slog"

	"github.com/indexforge/webindex/pkg/kafka"
)

// NewInvalidationHandler returns a kafka.MessageHandler that drops the cache
// entries named in each InvalidationEvent. Every server instance consumes the
// topic so a re-index on one instance purges the others' caches too.
func NewInvalidationHandler(cache *TermCache) kafka.MessageHandler {
	log := slog.Default().With("component", "cache-invalidator")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[InvalidationEvent](value)
		if err != nil {
			// A malformed event is dropped rather than retried forever.
			log.Error("dropping undecodable invalidation event", "key", string(key), "error", err)
			return nil
		}
		if err := cache.Invalidate(ctx, event.Codec, event.Terms); err != nil {
			return err
		}
		log.Debug("processed invalidation event",
			"codec", event.Codec,
			"terms", len(event.Terms),
			"indexed_at", event.IndexedAt,
		)
		return nil
	}
}
