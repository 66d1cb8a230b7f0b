package routes

import (
	"fmt"
	"net/http"

	"github.com/bdgeo/location-api/internal/handlers"
	"github.com/bdgeo/location-api/internal/location"
	"github.com/bdgeo/location-api/internal/middleware"
	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/bdgeo/location-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the handlers read from.
type Dependencies struct {
	DB        handlers.Pinger
	Locations *location.Repository
	Searcher  handlers.Searcher
	Metrics   *metrics.HTTPMetrics
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(s *config.Settings, deps Dependencies) (*gin.Engine, error) {
	// Set gin mode based on settings
	if !s.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	openAPIHandler, err := handlers.NewOpenAPIHandler(s.OpenAPI, s.REST.PageSize)
	if err != nil {
		return nil, fmt.Errorf("building openapi document: %w", err)
	}
	locationHandler := handlers.NewLocationHandler(deps.Locations, s.REST.PageSize)
	searchHandler := handlers.NewSearchHandler(deps.Searcher)

	router := gin.New()
	router.SetHTMLTemplate(handlers.DocsTemplate())
	router.Use(
		gin.CustomRecovery(recoveryHandler),
		middleware.RequestID(),
		middleware.AllowedHosts(s.AllowedHosts),
		middleware.SecurityHeaders(),
		corsMiddleware(s.CORS),
		deps.Metrics.Middleware(),
		middleware.AccessLog(),
	)
	router.NoRoute(handlers.NotFoundHandler)

	// HTTP routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/ping", handlers.PingHandler)
	router.GET("/healthz", handlers.HealthHandler(deps.DB))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// API routes
	api := router.Group("/api")
	{
		api.GET("/schema/", openAPIHandler.Schema)
		api.GET("/docs/", openAPIHandler.Docs)
		api.GET("/search/", searchHandler.Search)

		divisions := api.Group("/divisions")
		{
			divisions.GET("/", locationHandler.ListDivisions())
			divisions.GET("/:id/", locationHandler.GetDivision())
			divisions.GET("/:id/districts/", locationHandler.ListDivisionDistricts())
		}

		districts := api.Group("/districts")
		{
			districts.GET("/", locationHandler.ListDistricts())
			districts.GET("/:id/", locationHandler.GetDistrict())
			districts.GET("/:id/upazilas/", locationHandler.ListDistrictUpazilas())
		}

		upazilas := api.Group("/upazilas")
		{
			upazilas.GET("/", locationHandler.ListUpazilas())
			upazilas.GET("/:id/", locationHandler.GetUpazila())
			upazilas.GET("/:id/unions/", locationHandler.ListUpazilaUnions())
		}

		unions := api.Group("/unions")
		{
			unions.GET("/", locationHandler.ListUnions())
			unions.GET("/:id/", locationHandler.GetUnion())
		}
	}

	return router, nil
}

func recoveryHandler(c *gin.Context, recovered any) {
	logger.Log(logger.LevelError, map[string]string{
		"path":      c.Request.URL.Path,
		"requestID": middleware.GetRequestID(c),
	}, recovered, "panic while serving request")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
}
