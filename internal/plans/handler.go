package plans

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"planreview-backend/internal/shared/server/middleware"
	"planreview-backend/internal/shared/server/respond"
)

type Handler struct {
	Service *Service
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plans", h.upload)
	rg.GET("/plans", h.list)
	rg.GET("/plans/:planId", h.get)
	rg.GET("/plans/:planId/download", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}

	plan, err := h.Service.Upload(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUpload):
			respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "conflict", "identical plan already uploaded", map[string]any{
				"existingPlanId": plan.ID,
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store plan", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, plan.Meta())
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	items, err := h.Service.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list plans", nil)
		return
	}
	if items == nil {
		items = []Plan{}
	}
	respond.OK(c, gin.H{"plans": items})
}

func (h *Handler) get(c *gin.Context) {
	plan, err := h.Service.Get(c.Request.Context(), c.Param("planId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "plan not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load plan", nil)
		return
	}
	respond.OK(c, plan.Meta())
}

func (h *Handler) download(c *gin.Context) {
	plan, err := h.Service.Get(c.Request.Context(), c.Param("planId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "plan not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load plan", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+plan.Title+`.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(plan.Content))
}
