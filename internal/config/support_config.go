package config

type SupportConfig interface {
	GetSupportEmail() string
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpAccount() string
	GetSmtpPassword() string
}

type Support struct{}

var _ SupportConfig = Support{}

func (Support) GetSupportEmail() string {
	return GetEnv("SUPPORT_EMAIL", "support@utility.com")
}

// GetSmtpHost returns "" unless escalations should be mailed directly.
func (Support) GetSmtpHost() string {
	return GetEnv("SMTP_HOST", "")
}

func (Support) GetSmtpPort() string {
	return GetEnv("SMTP_PORT", "587")
}

func (Support) GetSmtpAccount() string {
	return GetEnv("SMTP_ACCOUNT", "")
}

func (Support) GetSmtpPassword() string {
	return GetEnv("SMTP_PASSWORD", "")
}
