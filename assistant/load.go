package assistant

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/rs/zerolog/log"
)

// LoadParams are the identity hints carried by a chat link.
type LoadParams struct {
	CustomerNumber string
	InvoiceNumber  string
	Name           string // decoded display name
	Clear          bool
}

// ParseLoadParams reads customernumber/customerId/cid, invoicenumber (or legacy id),
// base64 name and clear=true from a query string.
func ParseLoadParams(q url.Values) LoadParams {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(q.Get(k)); v != "" {
				return v
			}
		}
		return ""
	}
	return LoadParams{
		CustomerNumber: first("customernumber", "customerId", "cid"),
		InvoiceNumber:  first("invoicenumber", "id"),
		Name:           DecodeName(q.Get("name")),
		Clear:          strings.EqualFold(q.Get("clear"), "true"),
	}
}

// HasIdentity reports whether the link names a customer or invoice.
func (p LoadParams) HasIdentity() bool {
	return p.CustomerNumber != "" || p.InvoiceNumber != ""
}

// Load restores a session for a page load. Link identifiers take precedence over anything
// persisted: prior identifiers and flags are wiped before the link identifiers are resolved.
// clear=true wipes the whole session, preferences included.
func (s *Service) Load(ctx context.Context, sessionID string, params LoadParams, lang i18n.Language) (*Reply, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.session(sessionID, lang)
	if err != nil {
		return nil, err
	}

	if params.Clear {
		s.reset(sess)
		sess = sessions.New(sess.ID, lang, s.nowTime())
	}
	if params.Name != "" {
		sess.DisplayName = params.Name
	}
	if !params.HasIdentity() {
		if err := s.persist(sess); err != nil {
			return nil, err
		}
		return s.promptReply(sess), nil
	}

	s.reset(sess)
	if err := s.persist(sess); err != nil {
		return nil, err
	}

	// Invoice first, then customer.
	var lastErr error
	for _, identifier := range []string{params.InvoiceNumber, params.CustomerNumber} {
		if identifier == "" {
			continue
		}
		reply, err := s.resolve(ctx, sess, identifier)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		log.Info().Err(err).Str("session", sess.ID).Str("identifier", identifier).Msg("link identifier not resolved")
	}
	return s.promptReply(sess, UserMessage(sess.Language, lastErr)), nil
}
