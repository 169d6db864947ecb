package conversation

import (
	"fmt"
	"sync"
)

// InMemoryRepo keeps turns for the lifetime of the process only.
type InMemoryRepo struct {
	mu    sync.RWMutex
	turns map[string][]Turn // sessionID -> turns
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		turns: make(map[string][]Turn),
	}
}

func (r *InMemoryRepo) Append(sessionID string, turn Turn) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.turns[sessionID] = append(r.turns[sessionID], turn)
	return nil
}

// List returns a copy of the session's turns.
func (r *InMemoryRepo) List(sessionID string) ([]Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Turn(nil), r.turns[sessionID]...), nil
}

func (r *InMemoryRepo) Clear(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.turns, sessionID)
	return nil
}
