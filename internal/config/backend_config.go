package config

import (
	"strings"
	"time"
)

type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
	GetLogMirroring() bool
	GetBackendTokenURL() string
	GetBackendClientID() string
	GetBackendClientSecret() string
}

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetBackendURL() string {
	return strings.TrimSuffix(GetEnv("BACKEND_URL", "http://localhost:8000"), "/")
}

func (Backend) GetBackendTimeout() time.Duration {
	timeout, err := time.ParseDuration(GetEnv("BACKEND_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return 30 * time.Second
	}
	return timeout
}

// GetLogMirroring controls whether chat turns are mirrored to /log_message.
func (Backend) GetLogMirroring() bool {
	return strings.ToLower(GetEnv("LOG_MIRRORING", "true")) != "false"
}

// Client credentials are only used when a token URL is set.
func (Backend) GetBackendTokenURL() string {
	return GetEnv("BACKEND_TOKEN_URL", "")
}

func (Backend) GetBackendClientID() string {
	return GetEnv("BACKEND_CLIENT_ID", "")
}

func (Backend) GetBackendClientSecret() string {
	return GetEnv("BACKEND_CLIENT_SECRET", "")
}
