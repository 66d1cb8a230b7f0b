package config

import "strings"

// AllOrigins is the CORS_ALLOWED_ORIGINS value that disables origin checks.
const AllOrigins = "*"

// CORSConfig is the cross-origin policy applied to every response.
type CORSConfig struct {
	AllowAll         bool     `json:"allowAll"`
	AllowedOrigins   []string `json:"allowedOrigins"`
	AllowCredentials bool     `json:"allowCredentials"`
}

// ParseCORS builds the policy from the raw CORS_ALLOWED_ORIGINS value.
// Only the exact value "*" allows every origin; anything else is read as
// a comma-separated list and blank entries are dropped.
func ParseCORS(raw string) CORSConfig {
	cfg := CORSConfig{AllowCredentials: true}
	if raw == AllOrigins {
		cfg.AllowAll = true
		return cfg
	}

	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
	}
	return cfg
}

// Allows reports whether a request from origin may read the response.
func (c CORSConfig) Allows(origin string) bool {
	if c.AllowAll {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
