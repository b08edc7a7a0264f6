package search

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"study-abroad-backend/config"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

var searchFields = []struct {
	name  string
	boost float64
}{
	{"title", 10},
	{"university", 6},
	{"country", 5},
	{"program_type", 4},
	{"description", 2},
	{"mentor", 1},
}

type BleveIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	path  string
}

// NewBleveIndex opens the index at path, creating it when missing. An empty
// path keeps the index in memory.
func NewBleveIndex(path string) (*BleveIndex, error) {
	idx, err := openBleve(path)
	if err != nil {
		return nil, err
	}
	return &BleveIndex{index: idx, path: path}, nil
}

func openBleve(path string) (bleve.Index, error) {
	if path == "" {
		return bleve.NewMemOnly(bleve.NewIndexMapping())
	}
	idx, err := bleve.Open(path)
	if err == nil {
		return idx, nil
	}
	idx, err = bleve.New(path, bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index %s: %w", path, err)
	}
	return idx, nil
}

func (b *BleveIndex) IndexProgram(_ context.Context, doc ProgramDoc) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.index.Index(doc.ID, doc); err != nil {
		config.Logger.Error("Failed to index program", zap.String("program_id", doc.ID), zap.Error(err))
		return err
	}
	return nil
}

func (b *BleveIndex) IndexPrograms(_ context.Context, docs []ProgramDoc) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	batch := b.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to add program %s to batch: %w", doc.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	config.Logger.Info("Bulk indexed programs into Bleve", zap.Int("count", len(docs)))
	return nil
}

func (b *BleveIndex) DeleteProgram(_ context.Context, id string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index.Delete(id)
}

// SearchPrograms combines exact, prefix and fuzzy matches, weighted by field.
func (b *BleveIndex) SearchPrograms(_ context.Context, q string, size int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if size <= 0 {
		size = 20
	}

	var searchQuery query.Query
	if q == "" {
		searchQuery = bleve.NewMatchAllQuery()
	} else {
		lower := strings.ToLower(q)
		disjunction := bleve.NewDisjunctionQuery()
		for _, f := range searchFields {
			match := bleve.NewMatchQuery(q)
			match.SetField(f.name)
			match.SetBoost(f.boost)
			disjunction.AddQuery(match)

			prefix := bleve.NewPrefixQuery(lower)
			prefix.SetField(f.name)
			prefix.SetBoost(f.boost * 0.6)
			disjunction.AddQuery(prefix)

			if len(lower) >= 4 {
				fuzzy := bleve.NewFuzzyQuery(lower)
				fuzzy.SetField(f.name)
				fuzzy.SetFuzziness(1)
				fuzzy.SetBoost(f.boost * 0.3)
				disjunction.AddQuery(fuzzy)
			}
		}
		searchQuery = disjunction
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	result, err := b.index.Search(bleve.NewSearchRequestOptions(searchQuery, size, 0, false))
	if err != nil {
		config.Logger.Error("Program search failed", zap.String("query", q), zap.Error(err))
		return nil, err
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Reset drops every document by recreating the index.
func (b *BleveIndex) Reset(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	if b.path != "" {
		if err := os.RemoveAll(b.path); err != nil {
			return fmt.Errorf("failed to remove index %s: %w", b.path, err)
		}
	}
	idx, err := openBleve(b.path)
	if err != nil {
		return err
	}
	b.index = idx
	return nil
}

func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index.Close()
}
