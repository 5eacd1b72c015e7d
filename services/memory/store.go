// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// exchangePrefix keys all stored exchanges. The timestamp component keeps
// iteration in chronological order.
const exchangePrefix = "exchange/"

// StoredExchange is one archived conversation turn.
type StoredExchange struct {
	ID        string            `json:"id"`
	User      string            `json:"user"`
	Assistant string            `json:"assistant"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// document returns the searchable text of the exchange.
func (e StoredExchange) document() string {
	return "User: " + e.User + "\nAssistant: " + e.Assistant
}

// SearchResult pairs an exchange with its similarity to a query.
type SearchResult struct {
	Exchange   StoredExchange `json:"exchange"`
	Similarity float64        `json:"similarity"` // [0,1]
}

// StoreStats summarizes the archive.
type StoreStats struct {
	TotalExchanges int `json:"total_exchanges"`
}

// StoreConfig configures the long-term archive.
type StoreConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory disables disk persistence. Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger for store operations. Nil uses slog.Default().
	Logger *slog.Logger
}

// Store is the durable long-term exchange archive.
//
// Retrieval uses token-overlap similarity over the stored text. The
// archive is small (one record per conversation turn), so searches scan
// all records; there is no index to maintain.
//
// Thread Safety: safe for concurrent use; BadgerDB transactions provide
// isolation and the closed flag is guarded.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// OpenStore opens (or creates) the archive.
func OpenStore(config StoreConfig) (*Store, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(config.Path).
		WithInMemory(config.InMemory).
		WithSyncWrites(config.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	logger.Info("long-term memory opened",
		"path", config.Path,
		"in_memory", config.InMemory,
	)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// AddExchange archives a finalized (user, assistant) pair and returns the
// new exchange id.
func (s *Store) AddExchange(user, assistant string, metadata map[string]string) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}

	ex := StoredExchange{
		ID:        uuid.NewString(),
		User:      user,
		Assistant: assistant,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(ex)
	if err != nil {
		return "", fmt.Errorf("marshal exchange: %w", err)
	}
	key := fmt.Sprintf("%s%020d/%s", exchangePrefix, ex.CreatedAt.UnixNano(), ex.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return "", fmt.Errorf("store exchange: %w", err)
	}
	s.logger.Debug("exchange archived", "exchange_id", ex.ID)
	return ex.ID, nil
}

// ExportAll returns every archived exchange in chronological order.
func (s *Store) ExportAll() ([]StoredExchange, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var out []StoredExchange
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(exchangePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var ex StoredExchange
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ex)
			})
			if err != nil {
				return err
			}
			out = append(out, ex)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export exchanges: %w", err)
	}
	return out, nil
}

// SearchSimilar returns up to topK exchanges whose text overlaps the query,
// best first, filtered by minSimilarity. Similarity is Jaccard overlap of
// lowercased tokens, a deliberate stand-in for embedding distance that
// needs no external service.
func (s *Store) SearchSimilar(query string, topK int, minSimilarity float64) ([]SearchResult, error) {
	if topK < 1 {
		topK = 3
	}
	all, err := s.ExportAll()
	if err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)
	var results []SearchResult
	for _, ex := range all {
		sim := jaccard(queryTokens, tokenize(ex.document()))
		if sim >= minSimilarity && sim > 0 {
			results = append(results, SearchResult{Exchange: ex, Similarity: sim})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// RelevantContext formats the most similar past exchanges as a context
// block for prompting, or "" when nothing clears the similarity bar.
func (s *Store) RelevantContext(query string, topK int, minSimilarity float64) (string, error) {
	results, err := s.SearchSimilar(query, topK, minSimilarity)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("=== RELEVANT PAST CONVERSATIONS ===\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "\n[similarity %.2f]\n%s\n", r.Similarity, r.Exchange.document())
	}
	return sb.String(), nil
}

// SearchByDateRange returns exchanges created in [from, to], in
// chronological order.
func (s *Store) SearchByDateRange(from, to time.Time) ([]StoredExchange, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("from %s after to %s: %w", from, to, ErrInvalidRange)
	}
	all, err := s.ExportAll()
	if err != nil {
		return nil, err
	}
	var out []StoredExchange
	for _, ex := range all {
		if ex.CreatedAt.Before(from) || ex.CreatedAt.After(to) {
			continue
		}
		out = append(out, ex)
	}
	return out, nil
}

// Stats summarizes the archive.
func (s *Store) Stats() (StoreStats, error) {
	all, err := s.ExportAll()
	if err != nil {
		return StoreStats{}, err
	}
	return StoreStats{TotalExchanges: len(all)}, nil
}

// ClearAll drops every archived exchange.
func (s *Store) ClearAll() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("clear memory store: %w", err)
	}
	s.logger.Info("long-term memory cleared")
	return nil
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// single-character tokens.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(tok) > 1 {
			tokens[tok] = true
		}
	}
	return tokens
}

// jaccard computes |a ∩ b| / |a ∪ b|.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
