package backend

import (
	"context"
	"strings"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
)

// Resolution is the decoded outcome of /validate_identifier. It is one of
// Invalid, ResolvedInvoice, ResolvedCustomerSingle or ResolvedCustomerMultiple.
type Resolution interface {
	resolution()
}

// Invalid means the identifier is unknown to the backend.
type Invalid struct{}

// Customer carries the attributes the backend returns for a known customer.
// DateOfBirth is empty when no verification is required.
type Customer struct {
	CustomerNumber string
	CustomerName   string
	Salutation     string
	DateOfBirth    string
	Greeting       string
}

// ResolvedInvoice means the identifier was an invoice number.
type ResolvedInvoice struct {
	Customer
	InvoiceNumber string
}

// ResolvedCustomerSingle means the identifier was a customer number with at most one invoice.
type ResolvedCustomerSingle struct {
	Customer
	InvoiceNumber string
}

// ResolvedCustomerMultiple means the customer has several invoices to choose from.
type ResolvedCustomerMultiple struct {
	Customer
	CandidateInvoiceNumbers []string
}

func (Invalid) resolution()                  {}
func (ResolvedInvoice) resolution()          {}
func (ResolvedCustomerSingle) resolution()   {}
func (ResolvedCustomerMultiple) resolution() {}

type validateRequest struct {
	Identifier string `json:"identifier"`
	Language   string `json:"language"`
}

type validateResponse struct {
	Valid            bool     `json:"valid"`
	Type             string   `json:"type"`
	CustomerNumber   string   `json:"customer_number"`
	MultipleInvoices bool     `json:"multiple_invoices"`
	InvoiceNumbers   []string `json:"invoice_numbers"`
	CustomerName     string   `json:"customer_name"`
	Salutation       string   `json:"salutation"`
	DateOfBirth      string   `json:"date_of_birth"`
	CustomerGreeting string   `json:"customer_greeting"`
}

// ValidateIdentifier asks the backend to classify a customer or invoice number.
func (c *Client) ValidateIdentifier(ctx context.Context, identifier string, lang i18n.Language) (Resolution, error) {
	var resp validateResponse
	if err := c.post(ctx, PathValidateIdentifier, validateRequest{Identifier: identifier, Language: lang.String()}, &resp); err != nil {
		return nil, err
	}
	return resp.decode(identifier)
}

func (r validateResponse) decode(identifier string) (Resolution, error) {
	if !r.Valid {
		return Invalid{}, nil
	}
	customer := Customer{
		CustomerNumber: strings.TrimSpace(r.CustomerNumber),
		CustomerName:   strings.TrimSpace(r.CustomerName),
		Salutation:     strings.TrimSpace(r.Salutation),
		DateOfBirth:    strings.TrimSpace(r.DateOfBirth),
		Greeting:       strings.TrimSpace(r.CustomerGreeting),
	}
	invoices := nonEmpty(r.InvoiceNumbers)

	switch strings.ToLower(r.Type) {
	case "invoice":
		if customer.CustomerNumber == "" {
			return nil, errors.Wrapf(errors.ErrBackendResponse, "[ValidateIdentifier] invoice %q without customer number", identifier)
		}
		return ResolvedInvoice{Customer: customer, InvoiceNumber: identifier}, nil
	case "customer":
		if customer.CustomerNumber == "" {
			customer.CustomerNumber = identifier
		}
		if r.MultipleInvoices && len(invoices) > 1 {
			return ResolvedCustomerMultiple{Customer: customer, CandidateInvoiceNumbers: invoices}, nil
		}
		single := ResolvedCustomerSingle{Customer: customer}
		if len(invoices) > 0 {
			single.InvoiceNumber = invoices[0]
		}
		return single, nil
	default:
		return nil, errors.Wrapf(errors.ErrBackendResponse, "[ValidateIdentifier] unknown identifier type %q", r.Type)
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
