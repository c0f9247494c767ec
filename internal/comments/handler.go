package comments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"planreview-backend/internal/plans"
	"planreview-backend/internal/shared/server/middleware"
	"planreview-backend/internal/shared/server/respond"
)

type Handler struct {
	Service *Service
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plans/:planId/comments", h.create)
	rg.GET("/plans/:planId/comments", h.list)
	rg.GET("/comments/:commentId", h.get)
	rg.POST("/comments/:commentId/reject", h.reject)
	rg.POST("/comments/:commentId/discuss", h.discuss)
	rg.GET("/comments/:commentId/discussion", h.discussion)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	comment, err := h.Service.Create(c.Request.Context(), c.Param("planId"), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, plans.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "plan not found", nil)
		case errors.Is(err, ErrInvalidAnchor):
			respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		default:
			var vErr validation.Errors
			var single validation.Error
			if errors.As(err, &vErr) || errors.As(err, &single) {
				respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create comment", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, comment)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Service.ListByPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list comments", nil)
		return
	}
	if items == nil {
		items = []Comment{}
	}
	respond.OK(c, gin.H{"comments": items})
}

func (h *Handler) get(c *gin.Context) {
	comment, err := h.Service.Get(c.Request.Context(), c.Param("commentId"))
	if err != nil {
		respondCommentError(c, err)
		return
	}
	respond.OK(c, comment)
}

func (h *Handler) reject(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	comment, err := h.Service.Reject(c.Request.Context(), c.Param("commentId"), userID)
	if err != nil {
		respondCommentError(c, err)
		return
	}
	respond.OK(c, comment)
}

func (h *Handler) discuss(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	msg, err := h.Service.Discuss(c.Request.Context(), c.Param("commentId"), userID, req.Message)
	if err != nil {
		var single validation.Error
		if errors.As(err, &single) {
			respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
			return
		}
		respondCommentError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, msg)
}

func (h *Handler) discussion(c *gin.Context) {
	msgs, err := h.Service.Transcript(c.Request.Context(), c.Param("commentId"))
	if err != nil {
		respondCommentError(c, err)
		return
	}
	if msgs == nil {
		msgs = []DiscussionMessage{}
	}
	respond.OK(c, gin.H{"messages": msgs})
}

func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, plans.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "comment not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "only the plan owner may resolve comments", nil)
	case errors.Is(err, ErrInvalidState):
		respond.Error(c, http.StatusConflict, "invalid_state", "comment is already resolved", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "comment operation failed", nil)
	}
}
