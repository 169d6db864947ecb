package sessions_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	fakesessionrepo "github.com/jrsteele09/klarbill-gateway/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestSession_Usable(t *testing.T) {
	tests := []struct {
		name      string
		validated bool
		required  bool
		verified  bool
		want      bool
	}{
		{"unvalidated", false, false, false, false},
		{"unvalidated but verified", false, true, true, false},
		{"validated no gate", true, false, false, true},
		{"validated gate pending", true, true, false, false},
		{"validated gate passed", true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sessions.Session{IdentityValidated: tt.validated, VerificationRequired: tt.required, AgeVerified: tt.verified}
			require.Equal(t, tt.want, s.Usable())
		})
	}
}

func TestSession_TransitionTable(t *testing.T) {
	s := sessions.New("id", i18n.English, time.Now())
	require.Equal(t, sessions.StateUnidentified, s.State)

	require.Error(t, s.TransitionTo(sessions.StateReady))
	require.NoError(t, s.TransitionTo(sessions.StateResolving))
	require.NoError(t, s.TransitionTo(sessions.StateAwaitingVerification))
	require.Error(t, s.TransitionTo(sessions.StateAwaitingDisambiguation))
	require.NoError(t, s.TransitionTo(sessions.StateReady))
	require.NoError(t, s.TransitionTo(sessions.StateAwaitingDisambiguation))
	require.NoError(t, s.TransitionTo(sessions.StateUnidentified))
}

func TestSession_Settle(t *testing.T) {
	s := sessions.New("id", i18n.English, time.Now())
	require.Equal(t, sessions.StateUnidentified, s.Settle())

	s.CustomerNumber = "10000548"
	s.PendingInvoices = []sessions.InvoiceCandidate{{Number: "INV01"}, {Number: "INV02"}}
	require.Equal(t, sessions.StateAwaitingDisambiguation, s.Settle())
	require.True(t, s.HasCandidate("INV02"))
	require.False(t, s.HasCandidate("INV03"))

	s.PendingInvoices = nil
	s.IdentityValidated = true
	s.VerificationRequired = true
	require.Equal(t, sessions.StateAwaitingVerification, s.Settle())

	s.AgeVerified = true
	require.Equal(t, sessions.StateReady, s.Settle())

	s.ClearIdentity()
	require.Equal(t, sessions.StateUnidentified, s.Settle())
	require.Empty(t, s.CustomerNumber)
	require.False(t, s.AgeVerified)
}

func TestFakeSessionRepo_ClonesValues(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	s := sessions.New("id", i18n.English, time.Now())
	s.PendingInvoices = []sessions.InvoiceCandidate{{Number: "INV01"}}
	require.NoError(t, repo.Upsert(s))

	s.PendingInvoices[0].Number = "changed"
	got, err := repo.Get("id")
	require.NoError(t, err)
	require.Equal(t, "INV01", got.PendingInvoices[0].Number)

	purged, err := repo.DeleteExpiredSessions(time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, purged)
	require.Equal(t, 0, repo.Len())
}
