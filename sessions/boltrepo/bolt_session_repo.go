package boltrepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	pkgerrors "github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

var _ sessions.Repo = (*Repo)(nil)

// Repo stores sessions as JSON values in a single bbolt bucket keyed by session ID.
type Repo struct {
	db *bolt.DB
}

// Open creates the parent folder and the bucket if needed.
func Open(path string) (*Repo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "[boltrepo.Open] create folder")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[boltrepo.Open] open db")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "[boltrepo.Open] create bucket")
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Upsert(session *sessions.Session) error {
	if session == nil || session.ID == "" {
		return errors.ErrInvalidRequest
	}
	data, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(err, "[boltrepo.Upsert] marshal")
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(session.ID), data)
	})
}

func (r *Repo) Get(sessionID string) (*sessions.Session, error) {
	var session *sessions.Session
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(sessionID))
		if v == nil {
			return errors.ErrSessionNotFound
		}
		session = &sessions.Session{}
		return json.Unmarshal(v, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *Repo) Delete(sessionID string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b.Get([]byte(sessionID)) == nil {
			return errors.ErrSessionNotFound
		}
		return b.Delete([]byte(sessionID))
	})
}

// DeleteExpiredSessions removes sessions not updated since expiryTime.
// Malformed entries are removed as well.
func (r *Repo) DeleteExpiredSessions(expiryTime time.Time) ([]string, error) {
	var deleted []string
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			var s sessions.Session
			if err := json.Unmarshal(v, &s); err != nil || s.UpdatedAt.Before(expiryTime) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted = append(deleted, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
