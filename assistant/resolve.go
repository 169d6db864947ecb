package assistant

import (
	"context"
	"strings"

	"github.com/jrsteele09/klarbill-gateway/backend"
	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Badge kinds that can be removed by the user.
const (
	BadgeCustomer = "customer"
	BadgeInvoice  = "invoice"
)

// Resolve validates a customer or invoice number typed by the user. lang applies only when
// the session does not exist yet. An unknown identifier or a backend failure leaves the
// session untouched.
func (s *Service) Resolve(ctx context.Context, sessionID, identifier string, lang i18n.Language) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.session(sessionID, lang)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, sess, identifier)
}

func (s *Service) resolve(ctx context.Context, sess *sessions.Session, identifier string) (*Reply, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.ErrEmptyIdentifier
	}

	previous := sess.State
	if err := sess.TransitionTo(sessions.StateResolving); err != nil {
		return nil, err
	}
	res, err := s.backend.ValidateIdentifier(ctx, identifier, sess.Language)
	if err != nil {
		sess.State = previous
		return nil, pkgerrors.Wrap(err, "[Resolve] validate identifier")
	}
	if _, invalid := res.(backend.Invalid); invalid {
		sess.State = previous
		return nil, errors.Wrapf(errors.ErrInvalidIdentifier, "[Resolve] %q", identifier)
	}

	customer, err := s.apply(sess, res)
	if err != nil {
		sess.State = previous
		return nil, err
	}
	if customer.Greeting != "" {
		sess.GreetingText = customer.Greeting
	} else {
		s.refreshGreeting(ctx, sess, customer.Salutation, customer.CustomerName)
	}
	if err := sess.TransitionTo(sess.Settle()); err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}

	log.Info().Str("session", sess.ID).Str("state", string(sess.State)).Msg("identifier resolved")
	return s.stateReply(sess), nil
}

// apply replaces the session identity with a successful resolution.
func (s *Service) apply(sess *sessions.Session, res backend.Resolution) (backend.Customer, error) {
	var customer backend.Customer
	sess.ClearIdentity()
	sess.State = sessions.StateResolving

	switch r := res.(type) {
	case backend.ResolvedInvoice:
		customer = r.Customer
		sess.CustomerNumber = r.CustomerNumber
		sess.InvoiceNumber = r.InvoiceNumber
		sess.IdentityValidated = true
	case backend.ResolvedCustomerSingle:
		customer = r.Customer
		sess.CustomerNumber = r.CustomerNumber
		sess.InvoiceNumber = r.InvoiceNumber
		sess.InvoiceDerived = r.InvoiceNumber != ""
		sess.IdentityValidated = true
	case backend.ResolvedCustomerMultiple:
		customer = r.Customer
		sess.CustomerNumber = r.CustomerNumber
		sess.PendingInvoices = OrderCandidates(r.CandidateInvoiceNumbers)
	default:
		return customer, errors.Wrapf(errors.ErrBackendResponse, "[apply] unexpected resolution %T", res)
	}

	if err := s.armVerification(sess, customer.DateOfBirth); err != nil {
		return customer, err
	}
	return customer, nil
}

// SelectInvoice completes a disambiguation with one of the pending candidates.
func (s *Service) SelectInvoice(ctx context.Context, sessionID, invoiceNumber string) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.repos.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if !sess.AwaitingInvoice() {
		return nil, errors.ErrNoDisambiguation
	}
	if !sess.HasCandidate(invoiceNumber) {
		return nil, errors.Wrapf(errors.ErrUnknownCandidate, "[SelectInvoice] %q", invoiceNumber)
	}

	sess.InvoiceNumber = invoiceNumber
	sess.InvoiceDerived = true
	sess.IdentityValidated = true
	sess.PendingInvoices = nil
	s.refreshGreeting(ctx, sess, "", "")
	if err := sess.TransitionTo(sess.Settle()); err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return s.stateReply(sess), nil
}

// RemoveBadge drops one identifier. A derived invoice goes with its customer number unless
// it validates on its own. When nothing is left the session is reset.
func (s *Service) RemoveBadge(ctx context.Context, sessionID, kind string) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.repos.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.TransitionTo(sessions.StateResolving); err != nil {
		return nil, err
	}

	switch kind {
	case BadgeCustomer:
		sess.CustomerNumber = ""
		sess.PendingInvoices = nil
		if sess.InvoiceNumber != "" && sess.InvoiceDerived && !s.invoiceValidates(ctx, sess) {
			sess.InvoiceNumber = ""
		}
		sess.InvoiceDerived = false
	case BadgeInvoice:
		sess.InvoiceNumber = ""
		sess.InvoiceDerived = false
	default:
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[RemoveBadge] unknown badge %q", kind)
	}

	if sess.CustomerNumber == "" && sess.InvoiceNumber == "" {
		s.reset(sess)
	} else if err := sess.TransitionTo(sess.Settle()); err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return s.promptReply(sess), nil
}

func (s *Service) invoiceValidates(ctx context.Context, sess *sessions.Session) bool {
	res, err := s.backend.ValidateIdentifier(ctx, sess.InvoiceNumber, sess.Language)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("invoice revalidation failed")
		return false
	}
	_, ok := res.(backend.ResolvedInvoice)
	return ok
}

// stateReply is the reply after identity changes: candidates, the date of birth prompt,
// or the greeting once chat is available.
func (s *Service) stateReply(sess *sessions.Session) *Reply {
	switch sess.State {
	case sessions.StateAwaitingDisambiguation:
		return s.promptReply(sess, i18n.T(sess.Language, i18n.ChooseInvoice))
	case sessions.StateAwaitingVerification:
		return s.promptReply(sess, i18n.T(sess.Language, i18n.AskDateOfBirth))
	case sessions.StateReady:
		return s.promptReply(sess, NewView(sess).Greeting)
	default:
		return s.promptReply(sess)
	}
}
