package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"planreview-backend/internal/plans"
	"planreview-backend/internal/versions"
)

const planContent = "# Plan\nFirst point.\nSecond point.\nThird point."

func newTestService(t *testing.T) (*Service, plans.Plan) {
	t.Helper()
	planRepo := plans.NewMemoryRepo(versions.NewMemoryRepo())
	plan := plans.Plan{
		ID:          uuid.NewString(),
		OwnerID:     "owner-1",
		Title:       "test",
		Content:     planContent,
		ContentHash: plans.HashContent(planContent),
	}
	if err := planRepo.Create(context.Background(), plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	stored, _ := planRepo.GetByID(context.Background(), plan.ID)
	svc := NewService(NewMemoryRepo(), planRepo)
	return svc, stored
}

func TestCreateSnapshotsAnchor(t *testing.T) {
	svc, plan := newTestService(t)
	ctx := context.Background()

	comment, err := svc.Create(ctx, plan.ID, "reviewer-1", CreateRequest{
		Body:      "merge these",
		LineStart: 2,
		LineEnd:   3,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if comment.AnchorText != "First point.\nSecond point." {
		t.Fatalf("anchor mismatch: %q", comment.AnchorText)
	}
	if comment.PlanVersion != 1 {
		t.Fatalf("expected plan version 1, got %d", comment.PlanVersion)
	}
	if comment.Status != StatusPending {
		t.Fatalf("new comment must be pending, got %s", comment.Status)
	}
}

func TestCreateRejectsOutOfRangeLines(t *testing.T) {
	svc, plan := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end int
	}{
		{"end past document", 2, 99},
		{"end before start", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, plan.ID, "reviewer-1", CreateRequest{
				Body:      "x",
				LineStart: tt.start,
				LineEnd:   tt.end,
			})
			if !errors.Is(err, ErrInvalidAnchor) {
				t.Fatalf("expected ErrInvalidAnchor, got %v", err)
			}
		})
	}

	if _, err := svc.Create(ctx, plan.ID, "reviewer-1", CreateRequest{
		Body: "x", LineStart: 0, LineEnd: 1,
	}); err == nil {
		t.Fatal("zero lineStart must fail validation")
	}
}

func TestCreateRejectsBlankBody(t *testing.T) {
	svc, plan := newTestService(t)
	if _, err := svc.Create(context.Background(), plan.ID, "reviewer-1", CreateRequest{
		Body: "", LineStart: 1, LineEnd: 1,
	}); err == nil {
		t.Fatal("blank body must fail validation")
	}
}

func TestRejectOwnerOnly(t *testing.T) {
	svc, plan := newTestService(t)
	ctx := context.Background()

	comment, err := svc.Create(ctx, plan.ID, "reviewer-1", CreateRequest{Body: "x", LineStart: 1, LineEnd: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Reject(ctx, comment.ID, "reviewer-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	rejected, err := svc.Reject(ctx, comment.ID, "owner-1")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.ResolvedBy == nil || *rejected.ResolvedBy != "owner-1" {
		t.Fatalf("expected resolvedBy owner-1")
	}

	// Terminal comments stay put.
	if _, err := svc.Reject(ctx, comment.ID, "owner-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second reject, got %v", err)
	}
}

func TestDiscussMovesPendingToDebatingOnce(t *testing.T) {
	svc, plan := newTestService(t)
	ctx := context.Background()

	comment, err := svc.Create(ctx, plan.ID, "reviewer-1", CreateRequest{Body: "x", LineStart: 1, LineEnd: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Discuss(ctx, comment.ID, "owner-1", "why?"); err != nil {
		t.Fatalf("Discuss: %v", err)
	}
	after, _ := svc.Get(ctx, comment.ID)
	if after.Status != StatusDebating {
		t.Fatalf("expected debating after first message, got %s", after.Status)
	}

	if _, err := svc.Discuss(ctx, comment.ID, "reviewer-1", "because"); err != nil {
		t.Fatalf("Discuss: %v", err)
	}
	after, _ = svc.Get(ctx, comment.ID)
	if after.Status != StatusDebating {
		t.Fatalf("status must stay debating, got %s", after.Status)
	}

	msgs, err := svc.Transcript(ctx, comment.ID)
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Message != "why?" || msgs[1].Message != "because" {
		t.Fatalf("unexpected transcript %+v", msgs)
	}
}

func TestDiscussAppendsToTerminalCommentWithoutStatusChange(t *testing.T) {
	svc, plan := newTestService(t)
	ctx := context.Background()

	comment, err := svc.Create(ctx, plan.ID, "reviewer-1", CreateRequest{Body: "x", LineStart: 1, LineEnd: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Reject(ctx, comment.ID, "owner-1"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if _, err := svc.Discuss(ctx, comment.ID, "reviewer-1", "for the record"); err != nil {
		t.Fatalf("Discuss on terminal comment: %v", err)
	}
	after, _ := svc.Get(ctx, comment.ID)
	if after.Status != StatusRejected {
		t.Fatalf("terminal status must not change, got %s", after.Status)
	}
	msgs, _ := svc.Transcript(ctx, comment.ID)
	if len(msgs) != 1 {
		t.Fatalf("message must still be appended, got %d", len(msgs))
	}
}

func TestDiscussRejectsBlankMessage(t *testing.T) {
	svc, plan := newTestService(t)
	ctx := context.Background()
	comment, _ := svc.Create(ctx, plan.ID, "reviewer-1", CreateRequest{Body: "x", LineStart: 1, LineEnd: 1})

	if _, err := svc.Discuss(ctx, comment.ID, "owner-1", "   "); err == nil {
		t.Fatal("blank message must be rejected")
	}
}

func TestMemoryRepoResolveGuardsConcurrentResolvers(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	comment := Comment{ID: "c1", PlanID: "p1", AuthorID: "a1", Status: StatusPending}
	if err := repo.Create(ctx, comment); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.Resolve(ctx, "c1", StatusAccepted, "owner-1", now); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if err := repo.Resolve(ctx, "c1", StatusRejected, "owner-1", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second resolve must fail with ErrInvalidState, got %v", err)
	}
}
