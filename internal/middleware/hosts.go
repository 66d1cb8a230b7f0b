package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

const badRequestBody = "Bad Request (400)"

// AllowedHosts rejects requests whose Host header matches none of
// patterns. "*" matches any host and a leading dot matches the domain
// and all of its subdomains.
func AllowedHosts(patterns []string) gin.HandlerFunc {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(p)))
	}

	return func(c *gin.Context) {
		host := c.Request.Host
		if !HostAllowed(host, normalized) {
			logger.Log(logger.LevelWarn, map[string]string{
				"host":      host,
				"requestID": GetRequestID(c),
			}, nil, "Invalid HTTP_HOST header")
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.AbortWithStatus(http.StatusBadRequest)
			c.Writer.WriteString(badRequestBody)
			return
		}
		c.Next()
	}
}

// HostAllowed reports whether host, with any port removed, matches one
// of the lower-cased patterns.
func HostAllowed(host string, patterns []string) bool {
	domain := hostDomain(host)
	if domain == "" {
		return false
	}
	for _, p := range patterns {
		switch {
		case p == "*":
			return true
		case strings.HasPrefix(p, "."):
			if domain == p[1:] || strings.HasSuffix(domain, p) {
				return true
			}
		case domain == p:
			return true
		}
	}
	return false
}

func hostDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
		// SplitHostPort drops the brackets of IPv6 literals
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}
	return strings.TrimSuffix(host, ".")
}
