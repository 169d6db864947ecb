package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// DateLayout is the calendar date format compared by the verification gate.
const DateLayout = "2006-01-02"

// acceptedLayouts are parsed in order; everything is compared in DateLayout.
var acceptedLayouts = []string{DateLayout, "02.01.2006"}

// NormalizeDate parses a calendar date and renders it as YYYY-MM-DD.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// armVerification stores a hash of the expected date of birth. No date means no gate.
func (s *Service) armVerification(sess *sessions.Session, dateOfBirth string) error {
	sess.AgeVerified = false
	sess.VerificationRequired = false
	sess.DateOfBirthHash = ""
	if strings.TrimSpace(dateOfBirth) == "" {
		return nil
	}

	expected, ok := NormalizeDate(dateOfBirth)
	if !ok {
		// Unparseable dates are hashed verbatim and never match.
		expected = strings.TrimSpace(dateOfBirth)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(expected), s.bcryptCost)
	if err != nil {
		return pkgerrors.Wrap(err, "[armVerification] hash date of birth")
	}
	sess.VerificationRequired = true
	sess.DateOfBirthHash = string(hash)
	return nil
}

// Verify checks the user's date of birth. A mismatch may be retried without limit.
func (s *Service) Verify(ctx context.Context, sessionID, input string) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.repos.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.VerificationRequired {
		return nil, errors.ErrVerificationNotRequired
	}
	if sess.AwaitingInvoice() {
		return nil, errors.ErrNoDisambiguation
	}
	if !sess.IdentityValidated {
		return nil, errors.ErrSessionNotUsable
	}

	if !MatchesDateOfBirth(sess.DateOfBirthHash, input) {
		log.Warn().Str("session", sess.ID).Msg("date of birth mismatch")
		return nil, errors.ErrVerificationMismatch
	}

	sess.AgeVerified = true
	if err := sess.TransitionTo(sess.Settle()); err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return s.promptReply(sess, i18n.T(sess.Language, i18n.Verified)), nil
}

// MatchesDateOfBirth compares user input with the stored hash in DateLayout form.
func MatchesDateOfBirth(hash, input string) bool {
	if hash == "" {
		return false
	}
	normalized, ok := NormalizeDate(input)
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(normalized)) == nil
}
