// Package store persists compressed posting lists in PostgreSQL. Each row
// holds one (term, codec) pair; the bits column is the Bitstring's
// MarshalBinary form (8-byte big-endian bit count followed by the packed
// payload), which round-trips the bit sequence exactly.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/indexforge/webindex/internal/codec"
	"github.com/indexforge/webindex/internal/index"
	apperrors "github.com/indexforge/webindex/pkg/errors"
	"github.com/indexforge/webindex/pkg/postgres"
	"github.com/indexforge/webindex/pkg/resilience"
)

// saveTimeout bounds the whole SaveIndex transaction so a wedged upsert
// cannot hold the connection past the request lifetime.
const saveTimeout = 30 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS postings (
	term       TEXT        NOT NULL,
	codec      TEXT        NOT NULL,
	bits       BYTEA       NOT NULL,
	nbits      BIGINT      NOT NULL,
	doc_freq   INTEGER     NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (term, codec)
)`

// PostingStore reads and writes compressed postings rows.
type PostingStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a PostingStore on top of an open Postgres client.
func New(db *postgres.Client) *PostingStore {
	return &PostingStore{
		db:     db,
		logger: slog.Default().With("component", "posting-store"),
	}
}

// Migrate creates the postings table if it does not exist.
func (s *PostingStore) Migrate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating postings table: %w", err)
	}
	return nil
}

// SaveIndex upserts every term of a compressed index in one transaction.
// The doc_freq column records the posting-list length taken from the
// plaintext index, so stats queries never need to decompress.
func (s *PostingStore) SaveIndex(ctx context.Context, kind codec.Kind, compressed index.Compressed, idx index.Index) error {
	err := resilience.WithTimeout(ctx, saveTimeout, "save index", func(ctx context.Context) error {
		return s.db.InTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT INTO postings (term, codec, bits, nbits, doc_freq, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (term, codec) DO UPDATE
				SET bits = EXCLUDED.bits,
				    nbits = EXCLUDED.nbits,
				    doc_freq = EXCLUDED.doc_freq,
				    updated_at = EXCLUDED.updated_at`)
			if err != nil {
				return fmt.Errorf("preparing upsert: %w", err)
			}
			defer stmt.Close()

			now := time.Now().UTC()
			for term, bs := range compressed {
				data, err := bs.MarshalBinary()
				if err != nil {
					return fmt.Errorf("marshaling bits for term %q: %w", term, err)
				}
				if _, err := stmt.ExecContext(ctx, term, string(kind), data, bs.Len(), len(idx[term]), now); err != nil {
					return fmt.Errorf("upserting term %q: %w", term, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStoreFailed, err)
	}
	s.logger.Info("index saved", "codec", kind, "terms", len(compressed))
	return nil
}

// GetTerm loads the compressed posting list for one (term, codec) pair.
// A missing row is reported as apperrors.ErrTermNotFound.
func (s *PostingStore) GetTerm(ctx context.Context, term string, kind codec.Kind) (*codec.Bitstring, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT bits FROM postings WHERE term = $1 AND codec = $2`,
		term, string(kind)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q (%s)", apperrors.ErrTermNotFound, term, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying term %q: %w", apperrors.ErrStoreFailed, term, err)
	}
	var bs codec.Bitstring
	if err := bs.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: term %q: %w", apperrors.ErrStoreFailed, term, err)
	}
	return &bs, nil
}

// TermCount returns the number of stored (term, codec) rows.
func (s *PostingStore) TermCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting terms: %w", apperrors.ErrStoreFailed, err)
	}
	return count, nil
}
