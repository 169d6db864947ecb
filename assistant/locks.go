package assistant

import (
	"context"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// sessionLocks hands out one lock per session ID. Entries are reference counted and
// dropped once no caller holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// acquire blocks until the session is free or ctx is done.
func (l *sessionLocks) acquire(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{sem: semaphore.NewWeighted(1)}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	if err := sl.sem.Acquire(ctx, 1); err != nil {
		l.release(sessionID, sl, false)
		return nil, pkgerrors.Wrap(err, "[lock] session busy")
	}
	var once sync.Once
	return func() {
		once.Do(func() { l.release(sessionID, sl, true) })
	}, nil
}

func (l *sessionLocks) release(sessionID string, sl *sessionLock, held bool) {
	if held {
		sl.sem.Release(1)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(l.locks, sessionID)
	}
}

