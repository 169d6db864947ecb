package assistant

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/rs/zerolog/log"
)

// DisplaySalutation maps German salutations for English display; German passes through.
func DisplaySalutation(lang i18n.Language, salutation string) string {
	if i18n.Normalize(string(lang)) == i18n.German {
		return salutation
	}
	switch strings.ToLower(strings.TrimSpace(salutation)) {
	case "frau":
		return "Ms."
	case "herr":
		return "Mr."
	default:
		return salutation
	}
}

// FormatGreeting builds "<salutation> <name>!", e.g. "Ms. Müller!". Empty without a name.
func FormatGreeting(lang i18n.Language, salutation, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if sal := strings.TrimSpace(DisplaySalutation(lang, salutation)); sal != "" {
		return sal + " " + name + "!"
	}
	return name + "!"
}

// DecodeName decodes the base64 "name" link parameter, where '_' stands in for '='.
// Any malformed value decodes to "".
func DecodeName(encoded string) string {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return ""
	}
	encoded = strings.ReplaceAll(encoded, "_", "=")
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding} {
		raw, err := enc.DecodeString(encoded)
		if err == nil && utf8.Valid(raw) {
			return strings.TrimSpace(string(raw))
		}
	}
	return ""
}

// refreshGreeting asks the backend for the personalised greeting. On failure the greeting is
// built locally from salutation and name, or left for the generic fallback.
func (s *Service) refreshGreeting(ctx context.Context, sess *sessions.Session, salutation, name string) {
	g, err := s.backend.CustomerName(ctx, sess.CustomerNumber, sess.InvoiceNumber, sess.Language)
	if err != nil {
		log.Debug().Err(err).Str("session", sess.ID).Msg("greeting refresh failed")
	}
	if err == nil && strings.TrimSpace(g.Text) != "" {
		sess.GreetingText = strings.TrimSpace(g.Text)
		return
	}
	if local := FormatGreeting(sess.Language, salutation, name); local != "" {
		sess.GreetingText = local
	}
}
