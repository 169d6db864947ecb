package fakesessionrepo

import (
	"sync"
	"time"

	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps sessions in memory. Values are cloned on the way in and out.
type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Upsert(session *sessions.Session) error {
	if session == nil || session.ID == "" {
		return errors.ErrInvalidRequest
	}
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.sessions[session.ID] = session.Clone()
	return nil
}

func (sr *FakeSessionRepo) Delete(sessionID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if _, ok := sr.sessions[sessionID]; !ok {
		return errors.ErrSessionNotFound
	}
	delete(sr.sessions, sessionID)
	return nil
}

func (sr *FakeSessionRepo) Get(sessionID string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.sessions[sessionID]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (sr *FakeSessionRepo) DeleteExpiredSessions(expiryTime time.Time) ([]string, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	var deleted []string
	for sessionID, session := range sr.sessions {
		if session.UpdatedAt.Before(expiryTime) {
			delete(sr.sessions, sessionID)
			deleted = append(deleted, sessionID)
		}
	}
	return deleted, nil
}

// Len is used by tests.
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.sessions)
}
