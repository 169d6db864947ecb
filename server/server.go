package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/klarbill-gateway/assistant"
	"github.com/jrsteele09/klarbill-gateway/backend"
	"github.com/jrsteele09/klarbill-gateway/internal/config"
	"github.com/rs/zerolog/log"
)

// HealthChecker probes the KlarBill backend.
type HealthChecker interface {
	Health(ctx context.Context) (backend.Health, error)
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	assistant *assistant.Service
	health    HealthChecker
	cookies   *sessionCookies
	nowTime   func() time.Time
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the clock used for cookie expiry (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(config config.Config, svc *assistant.Service, health HealthChecker, options ...ServerOption) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("[Server New] assistant service is required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		assistant: svc,
		health:    health,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	cookies, err := newSessionCookies(config.GetSessionSigningKey(), config.GetMaxSessionAge(), config.GetSecureCookies(), s.nowTime)
	if err != nil {
		return nil, fmt.Errorf("[Server New] session cookies: %w", err)
	}
	s.cookies = cookies

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}
