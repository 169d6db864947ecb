package sessions

import "time"

// Repo persists sessions. Get returns errors.ErrSessionNotFound for unknown IDs.
type Repo interface {
	Upsert(session *Session) error
	Get(sessionID string) (*Session, error)
	Delete(sessionID string) error
	DeleteExpiredSessions(expiryTime time.Time) ([]string, error) // Returns the purged IDs
}
