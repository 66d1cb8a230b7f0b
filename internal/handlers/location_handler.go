package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bdgeo/location-api/internal/location"
	"github.com/bdgeo/location-api/internal/pagination"
	"github.com/gin-gonic/gin"
)

const searchParam = "search"

// LocationHandler serves the read-only location endpoints.
type LocationHandler struct {
	repo      *location.Repository
	paginator pagination.Paginator
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(repo *location.Repository, pageSize int) *LocationHandler {
	return &LocationHandler{
		repo:      repo,
		paginator: pagination.Paginator{PageSize: pageSize},
	}
}

func (h *LocationHandler) ListDivisions() gin.HandlerFunc {
	return listHandler(h.paginator, h.repo.Divisions, "")
}

func (h *LocationHandler) GetDivision() gin.HandlerFunc {
	return detailHandler(h.repo.Divisions)
}

func (h *LocationHandler) ListDivisionDistricts() gin.HandlerFunc {
	return childrenHandler(h.paginator, h.repo.Divisions, h.repo.Districts)
}

func (h *LocationHandler) ListDistricts() gin.HandlerFunc {
	return listHandler(h.paginator, h.repo.Districts, "division")
}

func (h *LocationHandler) GetDistrict() gin.HandlerFunc {
	return detailHandler(h.repo.Districts)
}

func (h *LocationHandler) ListDistrictUpazilas() gin.HandlerFunc {
	return childrenHandler(h.paginator, h.repo.Districts, h.repo.Upazilas)
}

func (h *LocationHandler) ListUpazilas() gin.HandlerFunc {
	return listHandler(h.paginator, h.repo.Upazilas, "district")
}

func (h *LocationHandler) GetUpazila() gin.HandlerFunc {
	return detailHandler(h.repo.Upazilas)
}

func (h *LocationHandler) ListUpazilaUnions() gin.HandlerFunc {
	return childrenHandler(h.paginator, h.repo.Upazilas, h.repo.Unions)
}

func (h *LocationHandler) ListUnions() gin.HandlerFunc {
	return listHandler(h.paginator, h.repo.Unions, "upazila")
}

func (h *LocationHandler) GetUnion() gin.HandlerFunc {
	return detailHandler(h.repo.Unions)
}

// listHandler serves a paginated listing. parentParam names the query
// parameter that filters by parent id; empty for top level tables.
func listHandler[T location.Entity](p pagination.Paginator, table location.Table[T], parentParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := location.ListOptions{Search: c.Query(searchParam)}
		if parentParam != "" {
			if raw := c.Query(parentParam); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id < 1 {
					c.JSON(http.StatusBadRequest, gin.H{parentParam: []string{"Enter a number."}})
					return
				}
				opts.ParentID = id
			}
		}
		writePage(c, p, table, opts)
	}
}

// childrenHandler lists the children of the parent named by :id, or 404
// when the parent does not exist.
func childrenHandler[P location.Entity, T location.Entity](p pagination.Paginator, parents location.Table[P], children location.Table[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if _, err := parents.Get(c.Request.Context(), id); err != nil {
			if errors.Is(err, location.ErrNotFound) {
				NotFoundHandler(c)
				return
			}
			serverError(c, err, "fetching parent location")
			return
		}
		writePage(c, p, children, location.ListOptions{ParentID: id, Search: c.Query(searchParam)})
	}
}

func detailHandler[T location.Entity](table location.Table[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := table.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, location.ErrNotFound) {
				NotFoundHandler(c)
				return
			}
			serverError(c, err, "fetching location")
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func writePage[T location.Entity](c *gin.Context, p pagination.Paginator, table location.Table[T], opts location.ListOptions) {
	ctx := c.Request.Context()

	count, err := table.Count(ctx, opts)
	if err != nil {
		serverError(c, err, "counting locations")
		return
	}
	window, err := p.Window(c.Query(pagination.QueryParam), count)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": detailInvalidPage})
		return
	}
	items, err := table.List(ctx, opts, window.Offset, window.Limit)
	if err != nil {
		serverError(c, err, "listing locations")
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(c.Request, window, count, items))
}

// pathID parses the :id segment. Anything but a positive integer does
// not name a location and is answered with 404.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		NotFoundHandler(c)
		return 0, false
	}
	return id, true
}
