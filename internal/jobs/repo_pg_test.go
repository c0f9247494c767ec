package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"planreview-backend/internal/versions"
)

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	job := Job{
		ID:          "job-1",
		CommentID:   "comment-1",
		PlanID:      "plan-1",
		RequesterID: "user-1",
		Status:      StatusPending,
	}

	mock.ExpectExec("INSERT INTO integration_jobs").
		WithArgs(job.ID, job.CommentID, job.PlanID, job.RequesterID, "pending").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_integration_jobs_live"})

	if err := repo.Create(context.Background(), job); !errors.Is(err, ErrLiveJobExists) {
		t.Fatalf("expected ErrLiveJobExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimNextPendingEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("UPDATE integration_jobs").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "comment_id", "plan_id", "requester_id", "status",
			"error_code", "error_message", "created_at", "started_at", "completed_at",
		}))

	_, ok, err := repo.ClaimNextPending(context.Background())
	if err != nil {
		t.Fatalf("ClaimNextPending: %v", err)
	}
	if ok {
		t.Fatal("expected no claimed job")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimNextPendingReturnsJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Now().UTC()
	started := created.Add(time.Second)

	mock.ExpectQuery("UPDATE integration_jobs").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "comment_id", "plan_id", "requester_id", "status",
			"error_code", "error_message", "created_at", "started_at", "completed_at",
		}).AddRow("job-1", "comment-1", "plan-1", "user-1", "processing", nil, nil, created, started, nil))

	job, ok, err := repo.ClaimNextPending(context.Background())
	if err != nil {
		t.Fatalf("ClaimNextPending: %v", err)
	}
	if !ok {
		t.Fatal("expected a claimed job")
	}
	if job.Status != StatusProcessing {
		t.Fatalf("expected processing, got %s", job.Status)
	}
	if job.StartedAt == nil {
		t.Fatal("expected startedAt to be set")
	}
}

func TestPGRepoCommitIntegrationVersionConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_version FROM plans").
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_version"}).AddRow(3))
	mock.ExpectRollback()

	commit := Commit{
		JobID:           "job-1",
		CommentID:       "comment-1",
		PlanID:          "plan-1",
		RequesterID:     "user-1",
		NewContent:      "revised",
		Summary:         "AI revision of lines 1-1: x",
		Source:          versions.SourceAIFromComment,
		ExpectedVersion: 2,
		Now:             time.Now().UTC(),
	}
	if err := repo.CommitIntegration(context.Background(), commit); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCommitIntegrationHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_version FROM plans").
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_version"}).AddRow(1))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version_number\), 0\)`).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
	mock.ExpectExec("UPDATE plans").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO plan_versions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE plan_comments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE integration_jobs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	commit := Commit{
		JobID:           "job-1",
		CommentID:       "comment-1",
		PlanID:          "plan-1",
		RequesterID:     "user-1",
		NewContent:      "revised",
		Summary:         "AI revision of lines 1-1: x",
		Source:          versions.SourceAIFromComment,
		ExpectedVersion: 1,
		Now:             now,
	}
	if err := repo.CommitIntegration(context.Background(), commit); err != nil {
		t.Fatalf("CommitIntegration: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCommitIntegrationCommentResolved(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_version FROM plans").
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_version"}).AddRow(1))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version_number\), 0\)`).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
	mock.ExpectExec("UPDATE plans").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO plan_versions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE plan_comments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	commit := Commit{
		JobID:           "job-1",
		CommentID:       "comment-1",
		PlanID:          "plan-1",
		RequesterID:     "user-1",
		NewContent:      "revised",
		Summary:         "s",
		Source:          versions.SourceAIFromComment,
		ExpectedVersion: 1,
		Now:             time.Now().UTC(),
	}
	if err := repo.CommitIntegration(context.Background(), commit); !errors.Is(err, ErrCommentResolved) {
		t.Fatalf("expected ErrCommentResolved, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
