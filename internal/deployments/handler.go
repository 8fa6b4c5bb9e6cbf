package deployments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume2portfolio/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the deployments service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches deployment history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/deployments", h.listDeployments)
	rg.GET("/deployments/:id", h.getDeployment)
}

func (h *Handler) getDeployment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "deployment id is required", nil)
		return
	}
	// IDs are UUIDs; anything else cannot exist and must not reach the uuid column.
	if _, err := uuid.Parse(id); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "deployment not found", nil)
		return
	}

	d, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "deployment not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch deployment", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, d)
}

func (h *Handler) listDeployments(c *gin.Context) {
	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list deployments", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items})
}
