package boltrepo_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/jrsteele09/klarbill-gateway/sessions/boltrepo"
	"github.com/stretchr/testify/require"
)

func openRepo(t *testing.T) (*boltrepo.Repo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "sessions.bolt")
	repo, err := boltrepo.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func TestBoltRepo_RoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.bolt")
	repo, err := boltrepo.Open(path)
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := sessions.New("s-1", i18n.German, now)
	s.CustomerNumber = "10000548"
	s.InvoiceNumber = "SWLS0074462025"
	s.IdentityValidated = true
	s.VerificationRequired = true
	s.AgeVerified = true
	s.GreetingText = "Frau Müller!"
	s.State = sessions.StateReady
	require.NoError(t, repo.Upsert(s))
	require.NoError(t, repo.Close())

	reopened, err := boltrepo.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("s-1")
	require.NoError(t, err)
	require.Equal(t, s.CustomerNumber, got.CustomerNumber)
	require.Equal(t, s.InvoiceNumber, got.InvoiceNumber)
	require.True(t, got.IdentityValidated)
	require.True(t, got.AgeVerified)
	require.Equal(t, i18n.German, got.Language)
	require.Equal(t, "Frau Müller!", got.GreetingText)
	require.Equal(t, sessions.StateReady, got.State)
	require.True(t, got.UpdatedAt.Equal(now))
}

func TestBoltRepo_NotFoundAndDelete(t *testing.T) {
	repo, _ := openRepo(t)

	_, err := repo.Get("missing")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
	require.ErrorIs(t, repo.Delete("missing"), errors.ErrSessionNotFound)

	require.NoError(t, repo.Upsert(sessions.New("s-2", i18n.English, time.Now())))
	require.NoError(t, repo.Delete("s-2"))
	_, err = repo.Get("s-2")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)

	require.Error(t, repo.Upsert(&sessions.Session{}))
}

func TestBoltRepo_DeleteExpiredSessions(t *testing.T) {
	repo, _ := openRepo(t)
	now := time.Now()

	require.NoError(t, repo.Upsert(sessions.New("old", i18n.English, now.Add(-48*time.Hour))))
	require.NoError(t, repo.Upsert(sessions.New("fresh", i18n.English, now)))

	purged, err := repo.DeleteExpiredSessions(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Equal(t, []string{"old"}, purged)

	_, err = repo.Get("old")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
	_, err = repo.Get("fresh")
	require.NoError(t, err)
}
