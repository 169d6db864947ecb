package support

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/klarbill-gateway/conversation"
)

// Ticket is a pre-filled support email.
type Ticket struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewTicket composes the support email for a conversation.
func NewTicket(to, customerNumber, invoiceNumber string, turns []conversation.Turn) Ticket {
	reference := invoiceNumber
	if reference == "" {
		reference = "Utility Bill"
	}
	customer := customerNumber
	if customer == "" {
		customer = "Unknown"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Customer Number: %s\n", customer)
	if invoiceNumber != "" {
		fmt.Fprintf(&body, "Invoice Number: %s\n", invoiceNumber)
	}
	body.WriteString("\nConversation History:\n\n")
	body.WriteString(conversation.Transcript(turns))
	body.WriteString("\n\n")

	return Ticket{
		To:      to,
		Subject: "Support Request - " + reference,
		Body:    body.String(),
	}
}

// MailtoURL renders the ticket as a mailto: link.
func (t Ticket) MailtoURL() string {
	q := url.Values{}
	q.Set("subject", t.Subject)
	q.Set("body", t.Body)
	// mailto readers expect %20 rather than '+'.
	return "mailto:" + t.To + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}
