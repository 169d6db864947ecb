package config

type Config interface {
	EnvConfig
	CorsConfig
	BackendConfig
	SecurityConfig
	SupportConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetStore() string
	GetSessionDBPath() string
	GetDatabaseURL() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Backend
	Security
	Support
}

func New() Config {
	return mainConfig{}
}
