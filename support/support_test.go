package support

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/klarbill-gateway/conversation"
	"github.com/stretchr/testify/require"
)

func TestNeedsEscalation(t *testing.T) {
	require.True(t, NeedsEscalation("Please ESCALATE this"))
	require.True(t, NeedsEscalation("Ich brauche Hilfe"))
	require.True(t, NeedsEscalation("can I talk to human?"))
	require.False(t, NeedsEscalation("Why did my bill increase?"))
	require.False(t, NeedsEscalation(""))
}

func TestNewTicket(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "escalate please", Timestamp: time.Now()},
		{Role: conversation.RoleAssistant, Content: "Sure."},
	}

	ticket := NewTicket("support@utility.com", "10000593", "SWLS0074462025", turns)
	require.Equal(t, "Support Request - SWLS0074462025", ticket.Subject)
	require.Contains(t, ticket.Body, "Customer Number: 10000593")
	require.Contains(t, ticket.Body, "user: escalate please\nassistant: Sure.")

	anon := NewTicket("support@utility.com", "", "", nil)
	require.Equal(t, "Support Request - Utility Bill", anon.Subject)
	require.Contains(t, anon.Body, "Customer Number: Unknown")

	link := ticket.MailtoURL()
	require.True(t, strings.HasPrefix(link, "mailto:support@utility.com?"))
	require.Contains(t, link, "subject=Support%20Request%20-%20SWLS0074462025")
	require.NotContains(t, link, "+")
}

func TestSMTPSender(t *testing.T) {
	var gotAddr string
	var gotMsg []byte
	s := NewSMTPSender("smtp.example.com", "587", "bot@example.com", "pw")
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		require.Equal(t, []string{"support@utility.com"}, to)
		require.NotNil(t, a)
		return nil
	}

	err := s.Send(context.Background(), Ticket{To: "support@utility.com", Subject: "Support Request - X", Body: "a\nb"})
	require.NoError(t, err)
	require.Equal(t, "smtp.example.com:587", gotAddr)
	require.Contains(t, string(gotMsg), "Subject: Support Request - X\r\n")
	require.Contains(t, string(gotMsg), "a\r\nb")

	require.Error(t, NewSMTPSender("", "25", "", "").Send(context.Background(), Ticket{To: "x@y"}))
}
