package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetSessionSigningKey() []byte
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetMaxSessionAge() time.Duration {
	age, err := time.ParseDuration(GetEnv("SESSION_MAX_AGE", "720h"))
	if err != nil || age <= 0 {
		return 30 * 24 * time.Hour
	}
	return age
}

// GetSessionSigningKey is the HMAC key for session cookies.
// An empty key makes the server generate a random one per process.
func (Security) GetSessionSigningKey() []byte {
	return []byte(GetEnv("SESSION_SIGNING_KEY", ""))
}

func (Security) GetSecureCookies() bool {
	return GetEnv("ENV", "DEV") != "DEV"
}
