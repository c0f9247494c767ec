package versions

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"planreview-backend/internal/shared/server/respond"
)

// PlanChecker confirms a plan exists before its history is served.
type PlanChecker interface {
	Exists(ctx context.Context, planID string) (bool, error)
}

type Handler struct {
	Repo  Repo
	Plans PlanChecker
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/plans/:planId/versions", h.list)
	rg.GET("/plans/:planId/versions/:number", h.get)
}

func (h *Handler) list(c *gin.Context) {
	planID := c.Param("planId")
	if !h.planExists(c, planID) {
		return
	}
	items, err := h.Repo.ListByPlan(c.Request.Context(), planID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list versions", nil)
		return
	}
	if items == nil {
		items = []Version{}
	}
	respond.OK(c, gin.H{"versions": items})
}

func (h *Handler) get(c *gin.Context) {
	planID := c.Param("planId")
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "version number must be a positive integer", nil)
		return
	}
	if !h.planExists(c, planID) {
		return
	}
	v, err := h.Repo.GetByNumber(c.Request.Context(), planID, number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "version not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load version", nil)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) planExists(c *gin.Context, planID string) bool {
	ok, err := h.Plans.Exists(c.Request.Context(), planID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load plan", nil)
		return false
	}
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "plan not found", nil)
		return false
	}
	return true
}
