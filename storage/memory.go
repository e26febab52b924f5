package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps encoded records in a map; Get returns independent copies.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return ErrMissingID
	}
	payload, err := EncodeRunRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	s.runs[rec.ID] = payload
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return RunRecord{}, false, ErrNotInitialized
	}

	payload, ok := s.runs[id]
	if !ok {
		return RunRecord{}, false, nil
	}
	rec, err := DecodeRunRecord(payload)
	if err != nil {
		return RunRecord{}, false, err
	}
	return rec, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	out := make([]RunSummary, 0, len(s.runs))
	for _, payload := range s.runs {
		rec, err := DecodeRunRecord(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Summary())
	}
	sortSummaries(out)
	return out, nil
}

// sortSummaries orders by creation time, then id.
func sortSummaries(s []RunSummary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].CreatedAt.Before(s[j].CreatedAt)
		}
		return s[i].ID < s[j].ID
	})
}
