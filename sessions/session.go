package sessions

import (
	"time"

	"github.com/jrsteele09/klarbill-gateway/i18n"
)

// InvoiceCandidate is one invoice offered during disambiguation.
type InvoiceCandidate struct {
	Number string `json:"number"`
	Label  string `json:"label,omitempty"` // "latest", "oldest" or empty
}

// Session is the per-browser state of the assistant workflow.
// An empty string means an identifier is absent.
type Session struct {
	ID                   string             `json:"id"`
	State                State              `json:"state"`
	CustomerNumber       string             `json:"customer_number,omitempty"`
	InvoiceNumber        string             `json:"invoice_number,omitempty"`
	InvoiceDerived       bool               `json:"invoice_derived,omitempty"`       // Invoice was obtained via the customer number
	IdentityValidated    bool               `json:"identity_validated"`              // Validation Service confirmed the identifier
	VerificationRequired bool               `json:"verification_required,omitempty"` // Backend supplied a date of birth
	DateOfBirthHash      string             `json:"date_of_birth_hash,omitempty"`    // bcrypt hash, never the plain date
	AgeVerified          bool               `json:"age_verified"`
	PendingInvoices      []InvoiceCandidate `json:"pending_invoices,omitempty"`
	Language             i18n.Language      `json:"language"`
	GreetingText         string             `json:"greeting_text,omitempty"`
	DisplayName          string             `json:"display_name,omitempty"`
	Theme                string             `json:"theme,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// New returns an unidentified session.
func New(id string, language i18n.Language, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateUnidentified,
		Language:  i18n.Normalize(string(language)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Usable reports whether chat may reach the backend.
func (s *Session) Usable() bool {
	return s.IdentityValidated && (s.AgeVerified || !s.VerificationRequired)
}

// AwaitingInvoice reports whether a disambiguation is outstanding.
func (s *Session) AwaitingInvoice() bool {
	return len(s.PendingInvoices) > 0
}

// HasCandidate reports whether number is one of the pending invoices.
func (s *Session) HasCandidate(number string) bool {
	for _, c := range s.PendingInvoices {
		if c.Number == number {
			return true
		}
	}
	return false
}

// ClearIdentity drops identifiers, flags and the cached greeting. Preferences survive.
func (s *Session) ClearIdentity() {
	s.CustomerNumber = ""
	s.InvoiceNumber = ""
	s.InvoiceDerived = false
	s.IdentityValidated = false
	s.VerificationRequired = false
	s.DateOfBirthHash = ""
	s.AgeVerified = false
	s.PendingInvoices = nil
	s.GreetingText = ""
	s.State = StateUnidentified
}

// Clone returns a deep copy so repositories never share slices with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.PendingInvoices != nil {
		c.PendingInvoices = append([]InvoiceCandidate(nil), s.PendingInvoices...)
	}
	return &c
}
