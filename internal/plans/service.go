package plans

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var ErrInvalidUpload = errors.New("invalid upload")

type UploadRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r UploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, MaxTitleLength)),
		validation.Field(&r.Content, validation.Required),
	)
}

type Service struct {
	Repo Repo
}

// Upload validates, hashes, and stores a new plan with its initial
// version. Re-uploading identical content returns the existing plan ID
// wrapped in ErrDuplicate.
func (s *Service) Upload(ctx context.Context, ownerID string, req UploadRequest) (Plan, error) {
	if err := req.Validate(); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	if len(req.Content) > MaxContentBytes {
		return Plan{}, fmt.Errorf("%w: content exceeds %d bytes", ErrInvalidUpload, MaxContentBytes)
	}

	hash := HashContent(req.Content)
	if existingID, found, err := s.Repo.FindByHash(ctx, ownerID, hash); err != nil {
		return Plan{}, err
	} else if found {
		return Plan{ID: existingID}, ErrDuplicate
	}

	plan := Plan{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Title:          req.Title,
		Content:        req.Content,
		ContentHash:    hash,
		CurrentVersion: 1,
		FileSizeBytes:  int64(len(req.Content)),
	}
	if err := s.Repo.Create(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, planID string) (Plan, error) {
	return s.Repo.GetByID(ctx, planID)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Plan, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Exists(ctx context.Context, planID string) (bool, error) {
	return s.Repo.Exists(ctx, planID)
}
