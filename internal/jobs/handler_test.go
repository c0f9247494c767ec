package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(f *fixture, userID string) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	h := NewHandler(f.coordinator)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, h
}

func TestHandlerAcceptReturnsJobID(t *testing.T) {
	f := newFixture(t, echoClient(), 10)
	plan := f.seedPlan(t, "owner-1")
	comment := f.seedComment(t, plan.ID, "reviewer-1", 4, 4)

	r, _ := newTestRouter(f, "owner-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/"+comment.ID+"/accept", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.JobID == "" || payload.Status != "pending" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestHandlerAcceptForbiddenForNonOwner(t *testing.T) {
	f := newFixture(t, echoClient(), 10)
	plan := f.seedPlan(t, "owner-1")
	comment := f.seedComment(t, plan.ID, "reviewer-1", 4, 4)

	r, _ := newTestRouter(f, "reviewer-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/"+comment.ID+"/accept", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestHandlerJobStatusRequesterOnly(t *testing.T) {
	f := newFixture(t, echoClient(), 10)
	ctx := context.Background()
	plan := f.seedPlan(t, "owner-1")
	comment := f.seedComment(t, plan.ID, "reviewer-1", 4, 4)
	job, err := f.coordinator.Accept(ctx, comment.ID, "owner-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	// A different user gets 404, not 403, so job IDs leak nothing.
	r, _ := newTestRouter(f, "reviewer-1")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-requester, got %d", resp.Code)
	}

	owner, _ := newTestRouter(f, "owner-1")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	resp = httptest.NewRecorder()
	owner.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for requester, got %d", resp.Code)
	}
}

func TestHandlerJobStatusPollLimited(t *testing.T) {
	f := newFixture(t, echoClient(), 10)
	ctx := context.Background()
	plan := f.seedPlan(t, "owner-1")
	comment := f.seedComment(t, plan.ID, "reviewer-1", 4, 4)
	job, err := f.coordinator.Accept(ctx, comment.ID, "owner-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	r, _ := newTestRouter(f, "owner-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("first poll expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("immediate second poll expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on poll limit")
	}
}
