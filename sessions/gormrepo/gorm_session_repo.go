package gormrepo

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ sessions.Repo = (*Repo)(nil)

// sessionRecord is one row per browser session. The session itself is stored as JSON so
// schema changes to sessions.Session never need a migration.
type sessionRecord struct {
	ID       string    `gorm:"primaryKey;size:64"`
	Data     []byte    `gorm:"not null"`
	LastSeen time.Time `gorm:"index;not null"` // Not UpdatedAt: gorm would stamp it with its own clock
}

func (sessionRecord) TableName() string {
	return "klarbill_sessions"
}

// Repo stores sessions in PostgreSQL so several gateway instances can share them.
type Repo struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the sessions table.
func Open(dsn string) (*Repo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[gormrepo.Open] connect")
	}
	return New(db)
}

// New uses an existing connection and migrates the sessions table.
func New(db *gorm.DB) (*Repo, error) {
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, pkgerrors.Wrap(err, "[gormrepo.New] migrate")
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repo) Upsert(session *sessions.Session) error {
	if session == nil || session.ID == "" {
		return errors.ErrInvalidRequest
	}
	data, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(err, "[Upsert] marshal session")
	}
	rec := sessionRecord{ID: session.ID, Data: data, LastSeen: session.UpdatedAt}
	return r.db.Save(&rec).Error
}

func (r *Repo) Get(sessionID string) (*sessions.Session, error) {
	var rec sessionRecord
	err := r.db.First(&rec, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrSessionNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Get] session")
	}
	var session sessions.Session
	if err := json.Unmarshal(rec.Data, &session); err != nil {
		return nil, pkgerrors.Wrap(err, "[Get] unmarshal session")
	}
	return &session, nil
}

func (r *Repo) Delete(sessionID string) error {
	res := r.db.Delete(&sessionRecord{}, "id = ?", sessionID)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "[Delete] session")
	}
	if res.RowsAffected == 0 {
		return errors.ErrSessionNotFound
	}
	return nil
}

func (r *Repo) DeleteExpiredSessions(expiryTime time.Time) ([]string, error) {
	var ids []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&sessionRecord{}).Where("last_seen < ?", expiryTime).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&sessionRecord{}).Error
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[DeleteExpiredSessions]")
	}
	return ids, nil
}
