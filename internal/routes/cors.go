package routes

import (
	"time"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsAllowMethods = []string{"DELETE", "GET", "OPTIONS", "PATCH", "POST", "PUT"}
	corsAllowHeaders = []string{
		"accept",
		"authorization",
		"content-type",
		"user-agent",
		"x-csrftoken",
		"x-requested-with",
	}
)

const corsMaxAge = 86400 * time.Second

// corsMiddleware applies the CORS policy. Requests from origins outside
// the policy are served without CORS headers so the browser blocks them.
func corsMiddleware(policy config.CORSConfig) gin.HandlerFunc {
	handler := cors.New(cors.Config{
		AllowOriginFunc:  policy.Allows,
		AllowMethods:     corsAllowMethods,
		AllowHeaders:     corsAllowHeaders,
		AllowCredentials: policy.AllowCredentials,
		MaxAge:           corsMaxAge,
	})

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && !policy.Allows(origin) {
			return
		}
		handler(c)
	}
}
