package scheduler

import (
	"context"
	"sync"
)

// MemorySeen keeps seen job ids for the lifetime of the process. It is used
// when neither Redis nor Postgres is configured.
type MemorySeen struct {
	mu   sync.Mutex
	seen map[int64]map[string]struct{}
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{seen: make(map[int64]map[string]struct{})}
}

func (m *MemorySeen) MarkSeen(_ context.Context, chatID int64, jobIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, ok := m.seen[chatID]
	if !ok {
		ids = make(map[string]struct{})
		m.seen[chatID] = ids
	}
	for _, id := range jobIDs {
		ids[id] = struct{}{}
	}
	return nil
}

func (m *MemorySeen) Unseen(_ context.Context, chatID int64, jobIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var unseen []string
	for _, id := range jobIDs {
		if _, ok := m.seen[chatID][id]; !ok {
			unseen = append(unseen, id)
		}
	}
	return unseen, nil
}
