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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(StoreConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AddAndExport(t *testing.T) {
	store := newTestStore(t)

	id1, err := store.AddExchange("first question", "first answer", nil)
	require.NoError(t, err)
	id2, err := store.AddExchange("second question", "second answer",
		map[string]string{"topic": "testing"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	all, err := store.ExportAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first question", all[0].User, "export should be chronological")
	assert.Equal(t, "testing", all[1].Metadata["topic"])
}

func TestStore_SearchSimilar(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AddExchange("how do I bake sourdough bread", "use a starter", nil)
	require.NoError(t, err)
	_, err = store.AddExchange("what is the capital of France", "Paris", nil)
	require.NoError(t, err)

	results, err := store.SearchSimilar("tips for baking bread with sourdough", 5, 0.05)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Exchange.User, "sourdough")

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Similarity, 0.05)
	}
}

func TestStore_SearchSimilar_MinSimilarityFilters(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AddExchange("completely unrelated topic", "indeed", nil)
	require.NoError(t, err)

	results, err := store.SearchSimilar("quantum chromodynamics lattice", 5, 0.5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_RelevantContext(t *testing.T) {
	store := newTestStore(t)

	ctxBlock, err := store.RelevantContext("anything", 3, 0.1)
	require.NoError(t, err)
	assert.Empty(t, ctxBlock, "empty archive yields no context block")

	_, err = store.AddExchange("favorite hiking trails near Seattle", "try Rattlesnake Ledge", nil)
	require.NoError(t, err)

	ctxBlock, err = store.RelevantContext("good hiking trails around Seattle", 3, 0.05)
	require.NoError(t, err)
	assert.Contains(t, ctxBlock, "=== RELEVANT PAST CONVERSATIONS ===")
	assert.Contains(t, ctxBlock, "Rattlesnake Ledge")
}

func TestStore_SearchByDateRange(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AddExchange("q", "a", nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	hits, err := store.SearchByDateRange(now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = store.SearchByDateRange(now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = store.SearchByDateRange(now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestStore_StatsAndClear(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AddExchange("q1", "a1", nil)
	require.NoError(t, err)
	_, err = store.AddExchange("q2", "a2", nil)
	require.NoError(t, err)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalExchanges)

	require.NoError(t, store.ClearAll())
	stats, err = store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalExchanges)
}

func TestStore_ClosedStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.AddExchange("q", "a", nil)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.ExportAll()
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.NoError(t, store.Close(), "Close is idempotent")
}
