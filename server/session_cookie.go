package server

import (
	"context"
	"crypto/rand"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/klarbill-gateway/assistant"
	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	sessionCookieName = "klarbill_session"
	cookieIssuer      = "klarbill-gateway"
	randomKeyLength   = 32
)

type sessionIDKey struct{}

// sessionCookies signs and verifies the session cookie. The cookie is an HS256 JWT whose
// subject is the session ID.
type sessionCookies struct {
	key     []byte
	maxAge  time.Duration
	secure  bool
	nowTime func() time.Time
}

func newSessionCookies(key []byte, maxAge time.Duration, secure bool, nowTime func() time.Time) (*sessionCookies, error) {
	if len(key) == 0 {
		key = make([]byte, randomKeyLength)
		if _, err := rand.Read(key); err != nil {
			return nil, pkgerrors.Wrap(err, "[newSessionCookies] generate signing key")
		}
		log.Warn().Msg("SESSION_SIGNING_KEY not set, sessions will not survive a restart")
	}
	return &sessionCookies{key: key, maxAge: maxAge, secure: secure, nowTime: nowTime}, nil
}

func (c *sessionCookies) sign(sessionID string) (string, error) {
	now := c.nowTime()
	claims := jwtlib.RegisteredClaims{
		Issuer:    cookieIssuer,
		Subject:   sessionID,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(c.maxAge)),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", pkgerrors.Wrap(err, "[sign] session token")
	}
	return token, nil
}

// verify returns the session ID carried by a signed cookie value.
func (c *sessionCookies) verify(value string) (string, error) {
	claims := &jwtlib.RegisteredClaims{}
	_, err := jwtlib.ParseWithClaims(value, claims, func(*jwtlib.Token) (interface{}, error) {
		return c.key, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(cookieIssuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(c.nowTime),
	)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidCookie, "[verify] %v", err)
	}
	if claims.Subject == "" {
		return "", errors.Wrapf(errors.ErrInvalidCookie, "[verify] missing subject")
	}
	return claims.Subject, nil
}

func (c *sessionCookies) write(w http.ResponseWriter, sessionID string) error {
	token, err := c.sign(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SessionMiddleware resolves the browser's session ID from its cookie, starting a new
// session when the cookie is missing, expired or forged. The cookie is re-issued on every
// request so an active session keeps sliding forward.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id, err := s.cookies.verify(cookie.Value)
			if err != nil {
				log.Debug().Err(err).Msg("discarding session cookie")
			}
			sessionID = id
		}
		if sessionID == "" {
			sessionID = assistant.NewSessionID()
		}

		if err := s.cookies.write(w, sessionID); err != nil {
			log.Err(err).Msg("write session cookie")
			writeJSONError(w, "internal_error", http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey{}, sessionID)))
	}
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
