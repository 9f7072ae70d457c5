package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps history in process memory. Used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Entry // fingerprint hash -> entries
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Entry)}
}

// Create appends an entry.
func (r *MemoryRepo) Create(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[entry.FingerprintHash] = append(r.data[entry.FingerprintHash], entry)
	return nil
}

// ListByFingerprint returns entries newest first.
func (r *MemoryRepo) ListByFingerprint(ctx context.Context, fingerprintHash string, filter ListFilter) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.data[fingerprintHash]))
	for _, e := range r.data[fingerprintHash] {
		if filter.ScenarioID != "" && e.ScenarioID != filter.ScenarioID {
			continue
		}
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if filter.Offset >= len(entries) {
		return []Entry{}, nil
	}
	entries = entries[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(entries) {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}
