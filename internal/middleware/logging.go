package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// quietPaths are polled by health checks and scrapers and not access logged.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// AccessLog logs one line per request once it has been served.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if quietPaths[path] {
			return
		}

		status := c.Writer.Status()
		fields := map[string]string{
			"method":    c.Request.Method,
			"path":      path,
			"status":    strconv.Itoa(status),
			"duration":  time.Since(start).String(),
			"clientIP":  c.ClientIP(),
			"requestID": GetRequestID(c),
		}

		level := logger.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = logger.LevelError
		case status >= http.StatusBadRequest:
			level = logger.LevelWarn
		}
		var err error
		if last := c.Errors.Last(); last != nil {
			err = last
		}
		logger.Log(level, fields, err, "request served")
	}
}
