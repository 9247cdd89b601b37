package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hamed0406/apiprobe/internal/repo"
)

// Store keeps completed runs in memory, newest first, capped at max.
type Store struct {
	mu   sync.RWMutex
	runs []*repo.StoredRun
	max  int
}

func New(max int) *Store {
	if max <= 0 {
		max = 100
	}
	return &Store{runs: make([]*repo.StoredRun, 0, 16), max: max}
}

func (s *Store) Save(ctx context.Context, run *repo.StoredRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	s.runs = append([]*repo.StoredRun{run}, s.runs...)
	if len(s.runs) > s.max {
		s.runs = s.runs[:s.max]
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*repo.StoredRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*repo.StoredRun, len(s.runs))
	copy(out, s.runs)
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*repo.StoredRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repo.ErrNotFound
}
