package backend

import (
	"context"
	"time"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/utils"
)

// ChatRequest is the body of /chat. Empty identifiers are sent as null.
type ChatRequest struct {
	Message        string        `json:"message"`
	Language       i18n.Language `json:"language"`
	CustomerNumber *string       `json:"customer_number"`
	InvoiceNumber  *string       `json:"invoice_number"`
}

// ChatReply is the decoded /chat response.
type ChatReply struct {
	Response              string   `json:"response"`
	NeedsInvoiceNumber    bool     `json:"needs_invoice_number"`
	InvoiceSuggestions    []string `json:"invoice_suggestions"`
	SessionCustomerNumber string   `json:"session_customer_number"`
	SessionInvoiceNumber  string   `json:"session_invoice_number"`
	CustomerGreeting      string   `json:"customer_greeting"`
	Error                 bool     `json:"error"`
}

// Chat forwards one user message.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	var reply ChatReply
	if err := c.post(ctx, PathChat, req, &reply); err != nil {
		return ChatReply{}, err
	}
	reply.InvoiceSuggestions = nonEmpty(reply.InvoiceSuggestions)
	return reply, nil
}

type customerNameRequest struct {
	CustomerNumber *string       `json:"customer_number"`
	InvoiceNumber  *string       `json:"invoice_number"`
	Language       i18n.Language `json:"language"`
}

// Greeting is the decoded /customer_name response. Text is empty when unknown.
type Greeting struct {
	Text string `json:"customer_greeting"`
	Type string `json:"type"`
}

// CustomerName fetches the personalised greeting for the given identifiers.
func (c *Client) CustomerName(ctx context.Context, customerNumber, invoiceNumber string, lang i18n.Language) (Greeting, error) {
	var g Greeting
	err := c.post(ctx, PathCustomerName, customerNameRequest{
		CustomerNumber: utils.NonZeroPtr(customerNumber),
		InvoiceNumber:  utils.NonZeroPtr(invoiceNumber),
		Language:       lang,
	}, &g)
	return g, err
}

// LogEntry is the body of /log_message.
type LogEntry struct {
	CustomerNumber string `json:"customer_number"`
	InvoiceNumber  string `json:"invoice_number,omitempty"`
	Message        string `json:"message"`
	Role           string `json:"role"`
	Timestamp      string `json:"timestamp"`
	Topic          string `json:"topic"`
	SessionID      string `json:"session_id"`
}

// NewLogEntry stamps an entry in RFC 3339 with the default topic.
func NewLogEntry(sessionID, customerNumber, invoiceNumber, role, message string, at time.Time) LogEntry {
	return LogEntry{
		CustomerNumber: customerNumber,
		InvoiceNumber:  invoiceNumber,
		Message:        message,
		Role:           role,
		Timestamp:      at.UTC().Format(time.RFC3339),
		Topic:          "general",
		SessionID:      sessionID,
	}
}

// LogMessage mirrors a turn. The response body is ignored.
func (c *Client) LogMessage(ctx context.Context, entry LogEntry) error {
	return c.post(ctx, PathLogMessage, entry, nil)
}

// Health is the decoded /health response.
type Health struct {
	Status         string `json:"status"`
	LLMStatus      string `json:"llm_status,omitempty"`
	FirebaseStatus string `json:"firebase_status,omitempty"`
	Version        string `json:"version,omitempty"`
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.get(ctx, PathHealth, &h)
	return h, err
}
