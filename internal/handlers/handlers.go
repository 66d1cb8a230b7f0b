package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	detailNotFound    = "Not found."
	detailInvalidPage = "Invalid page."
	detailServerError = "A server error occurred."

	healthTimeout = 2 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingHandler handles the ping endpoint
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// HomeHandler handles the root endpoint
func HomeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Bangladesh Location API",
		"docs":    "/api/docs/",
		"schema":  "/api/schema/",
	})
}

// HealthHandler reports 503 while the database is unreachable.
func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Log(logger.LevelError, nil, err, "health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// NotFoundHandler renders unknown routes like every other 404.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": detailNotFound})
}

func serverError(c *gin.Context, err error, msg string) {
	logger.Log(logger.LevelError, map[string]string{"path": c.Request.URL.Path}, err, msg)
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": detailServerError})
}
