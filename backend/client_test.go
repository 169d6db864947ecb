package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/klarbill-gateway/backend"
	"github.com/jrsteele09/klarbill-gateway/backend/fakebackend"
	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, url string) *backend.Client {
	t.Helper()
	c, err := backend.New(url, backend.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := backend.New("  ")
	require.Error(t, err)
}

func TestValidateIdentifier_Classification(t *testing.T) {
	fb := fakebackend.New()
	defer fb.Close()

	fb.AddIdentity("SWLS0074462025", fakebackend.Identity{
		Type: "invoice", CustomerNumber: "10000593", CustomerName: "Müller", Salutation: "Frau", DateOfBirth: "1980-05-01",
	})
	fb.AddIdentity("10000593", fakebackend.Identity{
		Type: "customer", CustomerNumber: "10000593", InvoiceNumbers: []string{"SWLS0074462025"}, CustomerName: "Müller",
	})
	fb.AddIdentity("10000548", fakebackend.Identity{
		Type: "customer", CustomerNumber: "10000548", MultipleInvoices: true, InvoiceNumbers: []string{"INV01", "INV02"},
	})
	fb.AddIdentity("BROKEN", fakebackend.Identity{Type: "meter"})

	c := newClient(t, fb.URL())
	ctx := context.Background()

	t.Run("invalid", func(t *testing.T) {
		res, err := c.ValidateIdentifier(ctx, "nope", i18n.English)
		require.NoError(t, err)
		require.IsType(t, backend.Invalid{}, res)
	})

	t.Run("invoice", func(t *testing.T) {
		res, err := c.ValidateIdentifier(ctx, "SWLS0074462025", i18n.German)
		require.NoError(t, err)
		inv, ok := res.(backend.ResolvedInvoice)
		require.True(t, ok)
		require.Equal(t, "10000593", inv.CustomerNumber)
		require.Equal(t, "SWLS0074462025", inv.InvoiceNumber)
		require.Equal(t, "1980-05-01", inv.DateOfBirth)
		require.Equal(t, "de", fb.Bodies("/validate_identifier")[1]["language"])
	})

	t.Run("customer single", func(t *testing.T) {
		res, err := c.ValidateIdentifier(ctx, "10000593", i18n.English)
		require.NoError(t, err)
		single, ok := res.(backend.ResolvedCustomerSingle)
		require.True(t, ok)
		require.Equal(t, "SWLS0074462025", single.InvoiceNumber)
		require.Empty(t, single.DateOfBirth)
	})

	t.Run("customer multiple", func(t *testing.T) {
		res, err := c.ValidateIdentifier(ctx, "10000548", i18n.English)
		require.NoError(t, err)
		multi, ok := res.(backend.ResolvedCustomerMultiple)
		require.True(t, ok)
		require.Equal(t, []string{"INV01", "INV02"}, multi.CandidateInvoiceNumbers)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := c.ValidateIdentifier(ctx, "BROKEN", i18n.English)
		require.ErrorIs(t, err, errors.ErrBackendResponse)
	})
}

func TestValidateIdentifier_Failures(t *testing.T) {
	fb := fakebackend.New()
	c := newClient(t, fb.URL())

	fb.Fail("/validate_identifier", http.StatusBadGateway)
	_, err := c.ValidateIdentifier(context.Background(), "x", i18n.English)
	require.ErrorIs(t, err, errors.ErrBackendUnavailable)
	require.Contains(t, err.Error(), "502")

	fb.Close()
	_, err = c.ValidateIdentifier(context.Background(), "x", i18n.English)
	require.ErrorIs(t, err, errors.ErrBackendUnavailable)

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid": tru`))
	}))
	defer garbage.Close()
	_, err = newClient(t, garbage.URL).ValidateIdentifier(context.Background(), "x", i18n.English)
	require.ErrorIs(t, err, errors.ErrBackendResponse)
}

func TestChat_SendsNullIdentifiers(t *testing.T) {
	fb := fakebackend.New()
	defer fb.Close()
	fb.SetChat(func(req map[string]any) map[string]any {
		return map[string]any{
			"response":             "Which invoice?",
			"needs_invoice_number": true,
			"invoice_suggestions":  []string{"INV3", "", "INV10"},
		}
	})

	reply, err := newClient(t, fb.URL()).Chat(context.Background(), backend.ChatRequest{Message: "hi", Language: i18n.English})
	require.NoError(t, err)
	require.True(t, reply.NeedsInvoiceNumber)
	require.Equal(t, []string{"INV3", "INV10"}, reply.InvoiceSuggestions)

	body := fb.Bodies("/chat")[0]
	require.Contains(t, body, "customer_number")
	require.Nil(t, body["customer_number"])
	require.Nil(t, body["invoice_number"])
}

func TestCustomerNameLogAndHealth(t *testing.T) {
	fb := fakebackend.New()
	defer fb.Close()
	fb.AddGreeting("10000593", "Ms. Müller!")
	c := newClient(t, fb.URL())
	ctx := context.Background()

	g, err := c.CustomerName(ctx, "10000593", "", i18n.English)
	require.NoError(t, err)
	require.Equal(t, "Ms. Müller!", g.Text)
	require.Equal(t, "customer", g.Type)

	at := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	require.NoError(t, c.LogMessage(ctx, backend.NewLogEntry("s1", "10000593", "", "user", "hello", at)))
	logged := <-fb.Logged()
	require.Equal(t, "2026-10-19T08:30:00Z", logged["timestamp"])
	require.Equal(t, "general", logged["topic"])
	require.Equal(t, "s1", logged["session_id"])

	h, err := c.Health(ctx)
	require.NoError(t, err)
	require.Equal(t, "healthy", h.Status)
}

func TestClientCredentials(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer api.Close()

	c, err := backend.New(api.URL, backend.WithClientCredentials(tokenSrv.URL, "gateway", "secret"))
	require.NoError(t, err)
	_, err = c.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
}
