package handlers

import (
	"context"
	"net/http"

	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/bdgeo/location-api/pkg/search"
	"github.com/gin-gonic/gin"
)

// Searcher answers full-text location queries.
type Searcher interface {
	Search(ctx context.Context, opts search.SearchOptions) (search.SearchResults, error)
}

type searchQuery struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=100"`
	Level string `form:"level" binding:"omitempty,oneof=division district upazila union"`
	Fuzzy *bool  `form:"fuzzy"`
}

// SearchHandler serves /api/search/.
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search handles location search requests
func (sh *SearchHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid search parameters: " + err.Error()})
		return
	}

	opts := search.SearchOptions{
		Query: q.Query,
		Limit: q.Limit,
		Level: q.Level,
		Fuzzy: q.Fuzzy == nil || *q.Fuzzy,
	}
	results, err := sh.searcher.Search(c.Request.Context(), opts)
	if err != nil {
		serverError(c, err, "searching locations")
		return
	}

	logger.Log(logger.LevelDebug, map[string]string{
		"query":      opts.Query,
		"searchTime": results.SearchTime,
	}, nil, "search served")
	c.JSON(http.StatusOK, results)
}
