package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"planreview-backend/internal/comments"
	"planreview-backend/internal/plans"
	"planreview-backend/internal/shared/server/middleware"
	"planreview-backend/internal/shared/server/respond"
)

type Handler struct {
	Coordinator *Coordinator
	polls       *pollLimiter
}

func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{
		Coordinator: coordinator,
		polls:       newPollLimiter(0, nil),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/comments/:commentId/accept", h.accept)
	rg.GET("/jobs/:jobId", h.get)
}

func (h *Handler) accept(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	job, err := h.Coordinator.Accept(c.Request.Context(), c.Param("commentId"), userID)
	if err != nil {
		switch {
		case errors.Is(err, comments.ErrNotFound), errors.Is(err, plans.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "comment not found", nil)
		case errors.Is(err, comments.ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "only the plan owner may accept comments", nil)
		case errors.Is(err, comments.ErrInvalidState):
			respond.Error(c, http.StatusConflict, "invalid_state", "comment is already resolved", nil)
		case errors.Is(err, ErrLiveJobExists):
			respond.Error(c, http.StatusConflict, "conflict", "an integration job is already running for this comment", nil)
		case errors.Is(err, ErrRateLimited):
			c.Header("Retry-After", "60")
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "accept rate limit exceeded", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to accept comment", nil)
		}
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{
		"jobId":  job.ID,
		"status": job.Status,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("jobId")

	if !h.polls.Allow(userID, jobID) {
		c.Header("Retry-After", strconv.Itoa(h.polls.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too fast", nil)
		return
	}

	job, err := h.Coordinator.Jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load job", nil)
		return
	}
	// Job status is visible to its requester only.
	if job.RequesterID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		return
	}
	respond.OK(c, job)
}
