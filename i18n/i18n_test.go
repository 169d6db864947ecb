package i18n_test

import (
	"testing"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, i18n.German, i18n.Normalize("DE"))
	require.Equal(t, i18n.German, i18n.Normalize(" de-AT "))
	require.Equal(t, i18n.English, i18n.Normalize("fr"))
	require.Equal(t, i18n.English, i18n.Normalize(""))
}

func TestNegotiate(t *testing.T) {
	require.Equal(t, i18n.German, i18n.Negotiate("de-DE,de;q=0.9,en;q=0.8"))
	require.Equal(t, i18n.English, i18n.Negotiate("en-GB,en;q=0.9"))
	require.Equal(t, i18n.English, i18n.Negotiate(""))
	require.Equal(t, i18n.English, i18n.Negotiate("not a header;;;"))
}

func TestMessages(t *testing.T) {
	require.NotEqual(t, i18n.T(i18n.English, i18n.GenericError), i18n.T(i18n.German, i18n.GenericError))
	require.Equal(t, i18n.T(i18n.English, i18n.AskIdentifier), i18n.T("xx", i18n.AskIdentifier))
	require.Equal(t, "Hello Customer! How can I help with your bill today?", i18n.Greeting(i18n.English, ""))
	require.Contains(t, i18n.Greeting(i18n.German, "Frau Müller"), "Hallo Frau Müller!")
}
