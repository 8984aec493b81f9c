package bm25

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/hupe1980/streamscope/lexical"
	"github.com/hupe1980/streamscope/model"
)

const (
	k1 = 1.2
	b  = 0.75
)

type posting struct {
	id    model.ActivityID
	count int
}

// MemoryIndex is a simple in-memory BM25 index over activity content.
//
// Every document is additionally indexed under model.EverythingKeyword so
// that padded NOT-only queries match the full corpus.
type MemoryIndex struct {
	mu          sync.RWMutex
	inverted    map[string][]posting
	docLengths  map[model.ActivityID]int
	totalLength int64
	docCount    int
}

// New creates a new MemoryIndex.
func New() *MemoryIndex {
	return &MemoryIndex{
		inverted:   make(map[string][]posting),
		docLengths: make(map[model.ActivityID]int),
	}
}

// Ensure MemoryIndex implements lexical.Index
var _ lexical.Index = (*MemoryIndex)(nil)

// Add indexes the activity's content.
func (idx *MemoryIndex) Add(a model.Activity) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	// If exists, delete first (naive update)
	if _, ok := idx.docLengths[a.ID]; ok {
		idx.deleteLocked(a.ID)
	}

	tokens := tokenize(a.Content)
	tokens = append(tokens, model.EverythingKeyword)
	length := len(tokens)

	idx.docLengths[a.ID] = length
	idx.totalLength += int64(length)
	idx.docCount++

	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	for t, count := range tf {
		idx.inverted[t] = append(idx.inverted[t], posting{id: a.ID, count: count})
	}
	return nil
}

// Delete removes an activity from the index.
func (idx *MemoryIndex) Delete(id model.ActivityID) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.deleteLocked(id)
}

func (idx *MemoryIndex) deleteLocked(id model.ActivityID) error {
	length, ok := idx.docLengths[id]
	if !ok {
		return nil
	}

	// O(terms * postings), fine for the in-memory reference index.
	for t := range idx.inverted {
		postings := idx.inverted[t]
		for i, p := range postings {
			if p.id == id {
				idx.inverted[t] = append(postings[:i], postings[i+1:]...)
				break
			}
		}
	}

	delete(idx.docLengths, id)
	idx.totalLength -= int64(length)
	idx.docCount--
	return nil
}

// SearchIDs returns matching IDs newest first.
func (idx *MemoryIndex) SearchIDs(_ context.Context, query string, offset, limit int) ([]model.ActivityID, error) {
	scores, err := idx.search(query)
	if err != nil {
		return nil, err
	}
	ids := make([]model.ActivityID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return window(ids, offset, limit), nil
}

// SearchRanked returns matching IDs by descending score, ties newest first.
func (idx *MemoryIndex) SearchRanked(_ context.Context, query string, offset, limit int) ([]model.ActivityID, error) {
	scores, err := idx.search(query)
	if err != nil {
		return nil, err
	}
	ids := make([]model.ActivityID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] > ids[j]
	})
	return window(ids, offset, limit), nil
}

func (idx *MemoryIndex) search(query string) (map[model.ActivityID]float64, error) {
	parsed, err := parseQuery(query)
	if err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scores := make(map[model.ActivityID]float64)
	if idx.docCount == 0 || parsed.empty() {
		return scores, nil
	}

	avgDL := float64(idx.totalLength) / float64(idx.docCount)

	// Candidate set: all required terms present, or any optional term when
	// the query has no required terms.
	var candidates map[model.ActivityID]bool
	for _, t := range parsed.required {
		next := make(map[model.ActivityID]bool)
		for _, p := range idx.inverted[t] {
			if candidates == nil || candidates[p.id] {
				next[p.id] = true
			}
		}
		candidates = next
	}
	if candidates == nil {
		candidates = make(map[model.ActivityID]bool)
		for _, t := range parsed.optional {
			for _, p := range idx.inverted[t] {
				candidates[p.id] = true
			}
		}
	}
	for _, t := range parsed.excluded {
		for _, p := range idx.inverted[t] {
			delete(candidates, p.id)
		}
	}

	scoring := append(append([]string(nil), parsed.required...), parsed.optional...)
	for _, t := range scoring {
		postings, ok := idx.inverted[t]
		if !ok {
			continue
		}
		idf := idx.computeIDF(len(postings))
		for _, p := range postings {
			if !candidates[p.id] {
				continue
			}
			tf := float64(p.count)
			docLen := float64(idx.docLengths[p.id])
			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(docLen/avgDL))
			scores[p.id] += idf * (num / denom)
		}
	}

	return scores, nil
}

func (idx *MemoryIndex) computeIDF(df int) float64 {
	// IDF = log(1 + (N - n + 0.5) / (n + 0.5))
	N := float64(idx.docCount)
	n := float64(df)
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// Close releases nothing; the index is purely in-memory.
func (idx *MemoryIndex) Close() error {
	return nil
}

func window(ids []model.ActivityID, offset, limit int) []model.ActivityID {
	if offset >= len(ids) {
		return nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}
