package gormrepo_test

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/jrsteele09/klarbill-gateway/sessions/gormrepo"
	"github.com/stretchr/testify/require"
)

// openRepo connects to TEST_DATABASE_URL, e.g.
// "host=localhost user=postgres password=postgres dbname=klarbill_test sslmode=disable".
func openRepo(t *testing.T) *gormrepo.Repo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	repo, err := gormrepo.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestGormRepo_UpsertGetDelete(t *testing.T) {
	repo := openRepo(t)
	id := uuid.New().String()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	s := sessions.New(id, i18n.German, now)
	s.CustomerNumber = "10000548"
	s.PendingInvoices = []sessions.InvoiceCandidate{{Number: "INV2", Label: "latest"}, {Number: "INV1", Label: "oldest"}}
	s.State = sessions.StateAwaitingDisambiguation
	require.NoError(t, repo.Upsert(s))

	s.InvoiceNumber = "INV2"
	s.PendingInvoices = nil
	s.State = sessions.StateReady
	require.NoError(t, repo.Upsert(s))

	got, err := repo.Get(id)
	require.NoError(t, err)
	require.Equal(t, "INV2", got.InvoiceNumber)
	require.Empty(t, got.PendingInvoices)
	require.Equal(t, sessions.StateReady, got.State)

	require.NoError(t, repo.Delete(id))
	_, err = repo.Get(id)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
	require.ErrorIs(t, repo.Delete(id), errors.ErrSessionNotFound)
}

func TestGormRepo_DeleteExpiredSessions(t *testing.T) {
	repo := openRepo(t)
	cutoff := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	old := sessions.New(uuid.New().String(), i18n.English, cutoff.Add(-time.Hour))
	fresh := sessions.New(uuid.New().String(), i18n.English, time.Now())
	require.NoError(t, repo.Upsert(old))
	require.NoError(t, repo.Upsert(fresh))

	purged, err := repo.DeleteExpiredSessions(cutoff)
	require.NoError(t, err)
	require.Contains(t, purged, old.ID)
	require.NotContains(t, purged, fresh.ID)

	_, err = repo.Get(old.ID)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
	_, err = repo.Get(fresh.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(fresh.ID))
}
