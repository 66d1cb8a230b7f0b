package config

const (
	// EmailBackendConsole prints outgoing mail to stdout.
	EmailBackendConsole = "console"
	// EmailBackendSMTP delivers outgoing mail through EMAIL_HOST.
	EmailBackendSMTP = "smtp"

	// DefaultEmailPort is the SMTP submission port.
	DefaultEmailPort = 587

	// DefaultFromEmail is the sender used when DEFAULT_FROM_EMAIL is not set.
	DefaultFromEmail = "webmaster@localhost"
)

// EmailConfig contains outgoing mail configuration.
type EmailConfig struct {
	// Backend is either "console" or "smtp".
	Backend string `json:"backend" validate:"oneof=console smtp"`
	// Sender e-mail address.
	From string `json:"from,omitempty"`
	// SMTP server host name.
	Host string `json:"host,omitempty"`
	// SMTP server port.
	Port int `json:"port" validate:"min=1,max=65535"`
	// If true the connection must be upgraded with STARTTLS.
	UseTLS bool `json:"useTLS"`
	// Username for PLAIN auth; no auth when empty.
	User string `json:"user,omitempty"`
	// Password for PLAIN auth.
	Password string `json:"-"`
}

// Sender returns the configured From address or the fallback.
func (e EmailConfig) Sender() string {
	if e.From != "" {
		return e.From
	}
	return DefaultFromEmail
}
