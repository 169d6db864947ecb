package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/klarbill-gateway/backend"
	"github.com/jrsteele09/klarbill-gateway/conversation"
	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/jrsteele09/klarbill-gateway/support"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultLogTimeout = 10 * time.Second
	defaultSupport    = "support@utility.com"
)

// Backend is the subset of the KlarBill backend the assistant talks to.
type Backend interface {
	ValidateIdentifier(ctx context.Context, identifier string, lang i18n.Language) (backend.Resolution, error)
	CustomerName(ctx context.Context, customerNumber, invoiceNumber string, lang i18n.Language) (backend.Greeting, error)
	Chat(ctx context.Context, req backend.ChatRequest) (backend.ChatReply, error)
	LogMessage(ctx context.Context, entry backend.LogEntry) error
}

// Repos holds the storage dependencies of the Service.
type Repos struct {
	Sessions      sessions.Repo     // Durable per-browser session state
	Conversations conversation.Repo // Turn history, in memory only
}

// Service owns the session workflow: identify, disambiguate, verify, chat.
// Every operation on one session runs under that session's lock and persists explicitly.
type Service struct {
	repos        Repos
	backend      Backend
	nowTime      func() time.Time
	bcryptCost   int
	mirror       bool
	logTimeout   time.Duration
	supportEmail string
	sender       support.Sender

	locks    *sessionLocks
	inflight sync.WaitGroup
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithBcryptCost sets the cost used to hash the expected date of birth.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithLogMirroring toggles mirroring of turns to /log_message.
func WithLogMirroring(enabled bool) ServiceOption {
	return func(s *Service) {
		s.mirror = enabled
	}
}

// WithSupport sets the escalation recipient and an optional sender for direct delivery.
func WithSupport(email string, sender support.Sender) ServiceOption {
	return func(s *Service) {
		if email != "" {
			s.supportEmail = email
		}
		s.sender = sender
	}
}

// NewService initializes a Service with required dependencies.
func NewService(repos Repos, be Backend, options ...ServiceOption) (*Service, error) {
	if repos.Sessions == nil {
		return nil, pkgerrors.New("[NewService] Sessions repo is required")
	}
	if repos.Conversations == nil {
		return nil, pkgerrors.New("[NewService] Conversations repo is required")
	}
	if be == nil {
		return nil, pkgerrors.New("[NewService] backend is required")
	}

	s := &Service{
		repos:        repos,
		backend:      be,
		nowTime:      time.Now,
		bcryptCost:   bcrypt.DefaultCost,
		mirror:       true,
		logTimeout:   defaultLogTimeout,
		supportEmail: defaultSupport,
		locks:        newSessionLocks(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Close waits for outstanding log mirroring requests.
func (s *Service) Close() {
	s.inflight.Wait()
}

// lock serialises all operations on one session. Other sessions are never blocked.
func (s *Service) lock(ctx context.Context, sessionID string) (func(), error) {
	return s.locks.acquire(ctx, sessionID)
}

// session fetches an existing session, or starts a fresh one when the ID is unknown.
func (s *Service) session(sessionID string, lang i18n.Language) (*sessions.Session, error) {
	sess, err := s.repos.Sessions.Get(sessionID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, errors.ErrSessionNotFound) {
		return nil, pkgerrors.Wrap(err, "[session] get")
	}
	return sessions.New(sessionID, lang, s.nowTime()), nil
}

// persist stamps and stores the session.
func (s *Service) persist(sess *sessions.Session) error {
	sess.UpdatedAt = s.nowTime()
	if err := s.repos.Sessions.Upsert(sess); err != nil {
		return pkgerrors.Wrap(err, "[persist] upsert session")
	}
	return nil
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// Session returns the last persisted view of a session without waiting on its lock.
func (s *Service) Session(sessionID string) (View, error) {
	sess, err := s.repos.Sessions.Get(sessionID)
	if err != nil {
		return View{}, err
	}
	return NewView(sess), nil
}

// Reset clears identifiers, flags and history. Language and theme survive.
func (s *Service) Reset(ctx context.Context, sessionID string) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.session(sessionID, i18n.English)
	if err != nil {
		return nil, err
	}
	s.reset(sess)
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return s.promptReply(sess), nil
}

func (s *Service) reset(sess *sessions.Session) {
	sess.ClearIdentity()
	if err := s.repos.Conversations.Clear(sess.ID); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("clear conversation")
	}
}

// SetPreferences updates language and theme; nil leaves a value unchanged.
func (s *Service) SetPreferences(ctx context.Context, sessionID string, lang, theme *string) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.session(sessionID, i18n.English)
	if err != nil {
		return nil, err
	}
	changed := false
	if lang != nil {
		if next := i18n.Normalize(*lang); next != sess.Language {
			sess.Language = next
			changed = true
		}
	}
	if theme != nil {
		sess.Theme = normalizeTheme(*theme)
	}
	if changed && sess.CustomerNumber != "" {
		s.refreshGreeting(ctx, sess, "", "")
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return s.promptReply(sess), nil
}

// PurgeExpired deletes sessions idle for longer than maxAge together with their turns.
func (s *Service) PurgeExpired(maxAge time.Duration) (int, error) {
	purged, err := s.repos.Sessions.DeleteExpiredSessions(s.nowTime().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	for _, id := range purged {
		if err := s.repos.Conversations.Clear(id); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("clear conversation")
		}
	}
	return len(purged), nil
}

// RunSweeper purges expired sessions every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(maxAge)
			if err != nil {
				log.Err(err).Msg("purge expired sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("count", n).Msg("purged expired sessions")
			}
		}
	}
}

func normalizeTheme(theme string) string {
	if theme == "light" {
		return "light"
	}
	return "dark"
}
