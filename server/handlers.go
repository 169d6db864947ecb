package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/klarbill-gateway/assistant"
	"github.com/jrsteele09/klarbill-gateway/i18n"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	maxBodyBytes  = 64 << 10
	healthTimeout = 5 * time.Second
)

type identifyRequest struct {
	Identifier string `json:"identifier"`
}

type selectInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

type verifyRequest struct {
	DateOfBirth string `json:"date_of_birth"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type feedbackRequest struct {
	Helpful bool `json:"helpful"`
}

type escalateRequest struct {
	Accept bool `json:"accept"`
}

type preferencesRequest struct {
	Language *string `json:"language"`
	Theme    *string `json:"theme"`
}

// LoadSessionHandler restores the session for a page load. Link parameters
// (customernumber, invoicenumber, name, clear) are read from the query string.
func (s *Server) LoadSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := assistant.ParseLoadParams(r.URL.Query())
		reply, err := s.assistant.Load(r.Context(), sessionIDFrom(r.Context()), params, requestLanguage(r))
		s.respond(w, r, reply, err)
	}
}

func (s *Server) ResetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, err := s.assistant.Reset(r.Context(), sessionIDFrom(r.Context()))
		s.respond(w, r, reply, err)
	}
}

func (s *Server) PreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req preferencesRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respond(w, r, nil, err)
			return
		}
		reply, err := s.assistant.SetPreferences(r.Context(), sessionIDFrom(r.Context()), req.Language, req.Theme)
		s.respond(w, r, reply, err)
	}
}

func (s *Server) RemoveBadgeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, err := s.assistant.RemoveBadge(r.Context(), sessionIDFrom(r.Context()), r.PathValue("kind"))
		s.respond(w, r, reply, err)
	}
}

func (s *Server) IdentifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identifyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respond(w, r, nil, err)
			return
		}
		reply, err := s.assistant.Resolve(r.Context(), sessionIDFrom(r.Context()), req.Identifier, requestLanguage(r))
		s.respond(w, r, reply, err)
	}
}

func (s *Server) SelectInvoiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectInvoiceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respond(w, r, nil, err)
			return
		}
		reply, err := s.assistant.SelectInvoice(r.Context(), sessionIDFrom(r.Context()), req.InvoiceNumber)
		s.respond(w, r, reply, err)
	}
}

func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respond(w, r, nil, err)
			return
		}
		reply, err := s.assistant.Verify(r.Context(), sessionIDFrom(r.Context()), req.DateOfBirth)
		s.respond(w, r, reply, err)
	}
}

func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respond(w, r, nil, err)
			return
		}
		reply, err := s.assistant.Send(r.Context(), sessionIDFrom(r.Context()), req.Message, requestLanguage(r))
		s.respond(w, r, reply, err)
	}
}

func (s *Server) FeedbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respond(w, r, nil, err)
			return
		}
		reply, err := s.assistant.Feedback(r.Context(), sessionIDFrom(r.Context()), req.Helpful)
		s.respond(w, r, reply, err)
	}
}

func (s *Server) EscalateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req escalateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respond(w, r, nil, err)
			return
		}
		reply, err := s.assistant.Escalate(r.Context(), sessionIDFrom(r.Context()), req.Accept)
		s.respond(w, r, reply, err)
	}
}

// HealthHandler reports the gateway as healthy and includes the backend's own status.
// An unreachable backend degrades the report but never fails it.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := map[string]interface{}{"status": "healthy"}
		if s.health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			h, err := s.health.Health(ctx)
			if err != nil {
				report["status"] = "degraded"
				report["backend"] = map[string]string{"status": "unreachable"}
			} else {
				report["backend"] = h
			}
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) NoContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// respond writes the reply, or maps err to a status and a message in the session's language.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, reply *assistant.Reply, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, reply)
		return
	}

	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	writeJSONError(w, code, assistant.UserMessage(s.language(r), err), status)
}

// language prefers the session's stored language over the request headers.
func (s *Server) language(r *http.Request) i18n.Language {
	if view, err := s.assistant.Session(sessionIDFrom(r.Context())); err == nil {
		return view.Language
	}
	return requestLanguage(r)
}

// requestLanguage reads ?lang= and falls back to Accept-Language.
func requestLanguage(r *http.Request) i18n.Language {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return i18n.Normalize(lang)
	}
	return i18n.Negotiate(r.Header.Get("Accept-Language"))
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errors.ErrInvalidRequest), errors.Is(err, errors.ErrEmptyIdentifier), errors.Is(err, errors.ErrEmptyMessage):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, errors.ErrInvalidIdentifier):
		return http.StatusUnprocessableEntity, "invalid_identifier"
	case errors.Is(err, errors.ErrVerificationMismatch):
		return http.StatusUnprocessableEntity, "verification_failed"
	case errors.Is(err, errors.ErrUnknownCandidate):
		return http.StatusUnprocessableEntity, "unknown_invoice"
	case errors.Is(err, errors.ErrSessionNotUsable):
		return http.StatusForbidden, "identification_required"
	case errors.Is(err, errors.ErrNoDisambiguation), errors.Is(err, errors.ErrVerificationNotRequired):
		return http.StatusConflict, "not_expected"
	case errors.Is(err, errors.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, errors.ErrBackendUnavailable), errors.Is(err, errors.ErrBackendResponse):
		return http.StatusBadGateway, "backend_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "[decodeJSON] %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

// writeJSONError writes an error response with a user facing message
func writeJSONError(w http.ResponseWriter, errorCode, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
