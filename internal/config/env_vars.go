package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "FOLDER"
	storeEnvVar    = "STORE"
	logLevelEnvVar = "LOG_LEVEL"
	databaseURLVar = "DATABASE_URL"

	StoreBolt     = "bolt"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "KlarBill")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetStore selects the session store backend: "bolt" (default), "postgres" or "memory".
func (EnvVars) GetStore() string {
	switch store := strings.ToLower(GetEnv(storeEnvVar, StoreBolt)); store {
	case StoreMemory, StorePostgres:
		return store
	default:
		return StoreBolt
	}
}

// GetSessionDBPath is the bbolt file holding persisted sessions.
func (e EnvVars) GetSessionDBPath() string {
	return filepath.Join(e.GetDataFolder(), "sessions.bolt")
}

// GetDatabaseURL is the PostgreSQL DSN used when STORE=postgres.
func (EnvVars) GetDatabaseURL() string {
	return GetEnv(databaseURLVar, "host=localhost user=postgres dbname=klarbill port=5432 sslmode=disable")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
