package assistant

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/klarbill-gateway/backend"
	"github.com/jrsteele09/klarbill-gateway/conversation"
	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/internal/utils"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/jrsteele09/klarbill-gateway/support"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Send forwards a chat message. Sessions that are not identified (or not yet verified)
// are answered locally and the backend is never contacted. lang applies only when the
// session does not exist yet.
func (s *Service) Send(ctx context.Context, sessionID, message string, lang i18n.Language) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.session(sessionID, lang)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.ErrEmptyMessage
	}
	if !sess.Usable() {
		return nil, errors.ErrSessionNotUsable
	}

	s.record(sess, conversation.RoleUser, message)

	reply, err := s.backend.Chat(ctx, backend.ChatRequest{
		Message:        message,
		Language:       sess.Language,
		CustomerNumber: utils.NonZeroPtr(sess.CustomerNumber),
		InvoiceNumber:  utils.NonZeroPtr(sess.InvoiceNumber),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Send] chat")
	}

	if reply.Error {
		// Identifiers in a failure reply are ignored.
		log.Warn().Str("session", sess.ID).Msg("backend reported a chat failure")
	} else {
		s.applyChatReply(sess, reply)
	}
	if err := sess.TransitionTo(sess.Settle()); err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(reply.Response)
	if text == "" {
		text = i18n.T(sess.Language, i18n.GenericError)
	}
	s.record(sess, conversation.RoleAssistant, text)

	out := s.promptReply(sess, text)
	out.Error = reply.Error
	out.OfferEscalation = support.NeedsEscalation(message)
	if out.OfferEscalation {
		out.Messages = append(out.Messages, i18n.T(sess.Language, i18n.EscalationOffer))
	}
	return out, nil
}

// applyChatReply folds backend-confirmed identifiers, greeting and invoice requests into the session.
func (s *Service) applyChatReply(sess *sessions.Session, reply backend.ChatReply) {
	if c := strings.TrimSpace(reply.SessionCustomerNumber); c != "" {
		sess.CustomerNumber = c
	}
	if inv := strings.TrimSpace(reply.SessionInvoiceNumber); inv != "" && inv != sess.InvoiceNumber {
		sess.InvoiceNumber = inv
		sess.InvoiceDerived = false
	}
	if g := strings.TrimSpace(reply.CustomerGreeting); g != "" {
		sess.GreetingText = g
	}
	if reply.NeedsInvoiceNumber && len(reply.InvoiceSuggestions) > 0 {
		sess.InvoiceNumber = ""
		sess.InvoiceDerived = false
		sess.PendingInvoices = OrderCandidates(reply.InvoiceSuggestions)
	}
}

// record appends a turn and mirrors it to the backend log.
func (s *Service) record(sess *sessions.Session, role conversation.Role, content string) {
	turn := conversation.Turn{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: s.nowTime(),
	}
	if err := s.repos.Conversations.Append(sess.ID, turn); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("append turn")
	}
	if s.mirror {
		s.mirrorTurn(backend.NewLogEntry(sess.ID, sess.CustomerNumber, sess.InvoiceNumber, string(role), content, turn.Timestamp))
	}
}

// mirrorTurn is fire-and-forget: one attempt, failures are only logged at debug level.
func (s *Service) mirrorTurn(entry backend.LogEntry) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.logTimeout)
		defer cancel()
		if err := s.backend.LogMessage(ctx, entry); err != nil {
			log.Debug().Err(err).Str("session", entry.SessionID).Msg("log mirroring failed")
		}
	}()
}

// Feedback acknowledges a thumbs up or down. Negative feedback offers escalation.
func (s *Service) Feedback(ctx context.Context, sessionID string, helpful bool) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.repos.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", sess.ID).Bool("helpful", helpful).Msg("feedback")

	reply := &Reply{Session: NewView(sess)}
	if helpful {
		reply.Messages = []string{i18n.T(sess.Language, i18n.FeedbackPositive)}
		return reply, nil
	}
	reply.Messages = []string{i18n.T(sess.Language, i18n.FeedbackNegative), i18n.T(sess.Language, i18n.EscalationOffer)}
	reply.OfferEscalation = true
	return reply, nil
}

// Escalate answers the escalation offer. Accepting composes a support ticket with the full
// transcript and, when a sender is configured, delivers it.
func (s *Service) Escalate(ctx context.Context, sessionID string, accept bool) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.repos.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	reply := &Reply{Session: NewView(sess)}
	if !accept {
		reply.Messages = []string{i18n.T(sess.Language, i18n.EscalationDecline)}
		return reply, nil
	}

	turns, err := s.repos.Conversations.List(sess.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Escalate] list turns")
	}
	ticket := support.NewTicket(s.supportEmail, sess.CustomerNumber, sess.InvoiceNumber, turns)
	if s.sender != nil {
		if err := s.sender.Send(ctx, ticket); err != nil {
			return nil, pkgerrors.Wrap(err, "[Escalate] send ticket")
		}
	}
	log.Info().Str("session", sess.ID).Int("turns", len(turns)).Msg("escalated to support")

	reply.Ticket = &ticket
	reply.MailtoURL = ticket.MailtoURL()
	reply.Messages = []string{i18n.T(sess.Language, i18n.EscalationConfirm)}
	return reply, nil
}
