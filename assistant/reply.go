package assistant

import (
	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/jrsteele09/klarbill-gateway/support"
)

// Prompt tells the client which input to ask for next.
type Prompt string

const (
	PromptNone        Prompt = ""
	PromptIdentifier  Prompt = "identifier"
	PromptInvoice     Prompt = "invoice"
	PromptDateOfBirth Prompt = "date_of_birth"
)

// View is the client-facing snapshot of a session. Secrets are omitted.
type View struct {
	ID                   string         `json:"id"`
	State                sessions.State `json:"state"`
	CustomerNumber       string         `json:"customer_number,omitempty"`
	InvoiceNumber        string         `json:"invoice_number,omitempty"`
	IdentityValidated    bool           `json:"identity_validated"`
	VerificationRequired bool           `json:"verification_required"`
	AgeVerified          bool           `json:"age_verified"`
	Usable               bool           `json:"usable"`
	Language             i18n.Language  `json:"language"`
	Greeting             string         `json:"greeting"`
	Theme                string         `json:"theme,omitempty"`
}

func NewView(s *sessions.Session) View {
	greeting := s.GreetingText
	if greeting == "" {
		greeting = i18n.Greeting(s.Language, s.DisplayName)
	}
	return View{
		ID:                   s.ID,
		State:                s.State,
		CustomerNumber:       s.CustomerNumber,
		InvoiceNumber:        s.InvoiceNumber,
		IdentityValidated:    s.IdentityValidated,
		VerificationRequired: s.VerificationRequired,
		AgeVerified:          s.AgeVerified,
		Usable:               s.Usable(),
		Language:             s.Language,
		Greeting:             greeting,
		Theme:                s.Theme,
	}
}

// Reply is the outcome of one workflow operation.
type Reply struct {
	Session         View                        `json:"session"`
	Messages        []string                    `json:"messages,omitempty"`
	Prompt          Prompt                      `json:"prompt,omitempty"`
	Candidates      []sessions.InvoiceCandidate `json:"candidates,omitempty"`
	OfferEscalation bool                        `json:"offer_escalation,omitempty"`
	Error           bool                        `json:"error,omitempty"` // Backend answered with a failure notice
	Ticket          *support.Ticket             `json:"ticket,omitempty"`
	MailtoURL       string                      `json:"mailto_url,omitempty"`
}

// promptReply describes what the session needs next.
func (s *Service) promptReply(sess *sessions.Session, messages ...string) *Reply {
	r := &Reply{Session: NewView(sess), Messages: messages}
	switch sess.State {
	case sessions.StateUnidentified:
		r.Prompt = PromptIdentifier
		if len(messages) == 0 {
			r.Messages = []string{i18n.T(sess.Language, i18n.AskIdentifier)}
		}
	case sessions.StateAwaitingDisambiguation:
		r.Prompt = PromptInvoice
		r.Candidates = append(r.Candidates, sess.PendingInvoices...)
	case sessions.StateAwaitingVerification:
		r.Prompt = PromptDateOfBirth
	}
	return r
}

// UserMessage converts a workflow error into the localized text shown to the user.
func UserMessage(lang i18n.Language, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errors.ErrInvalidIdentifier):
		return i18n.T(lang, i18n.IdentifierInvalid)
	case errors.Is(err, errors.ErrEmptyIdentifier), errors.Is(err, errors.ErrSessionNotUsable):
		return i18n.T(lang, i18n.AskIdentifier)
	case errors.Is(err, errors.ErrVerificationMismatch):
		return i18n.T(lang, i18n.DateOfBirthMismatch)
	case errors.Is(err, errors.ErrUnknownCandidate), errors.Is(err, errors.ErrNoDisambiguation):
		return i18n.T(lang, i18n.ChooseInvoice)
	default:
		return i18n.T(lang, i18n.GenericError)
	}
}
