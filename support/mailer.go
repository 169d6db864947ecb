package support

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Sender delivers tickets.
type Sender interface {
	Send(ctx context.Context, ticket Ticket) error
}

// SMTPSender sends tickets through an authenticated SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	Account  string
	Password string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host, port, account, password string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, Account: account, Password: password, sendMail: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, ticket Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Host == "" || ticket.To == "" {
		return pkgerrors.New("[SMTPSender.Send] host and recipient are required")
	}
	var auth smtp.Auth
	if s.Account != "" {
		auth = smtp.PlainAuth("", s.Account, s.Password, s.Host)
	}
	from := s.Account
	if from == "" {
		from = ticket.To
	}
	if err := s.sendMail(net.JoinHostPort(s.Host, s.Port), auth, from, []string{ticket.To}, formatMessage(from, ticket)); err != nil {
		return pkgerrors.Wrap(err, "[SMTPSender.Send] send mail")
	}
	return nil
}

func formatMessage(from string, t Ticket) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", t.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", t.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(t.Body, "\n", "\r\n"))
	return []byte(b.String())
}
