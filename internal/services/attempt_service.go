package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

// AttemptService enforces the per-user submission ceiling: the assignment's
// shared base attempt count plus any per-user grant.
type AttemptService interface {
	EffectiveAttempts(ctx context.Context, assignmentID, userID string) (int, error)
	SubmittedCount(ctx context.Context, assignmentID, userID string) (int, error)
	CanSubmit(ctx context.Context, assignmentID, userID string) (bool, error)
	// GrantExtraAttempts upserts the grant for (assignment, user): the new
	// extra count replaces the prior one, it does not add to it.
	GrantExtraAttempts(ctx context.Context, req *GrantAttemptsRequest, grantedBy string) error
}

type GrantAttemptsRequest struct {
	AssignmentID  string `json:"assignment_id" validate:"required"`
	UserID        string `json:"user_id" validate:"required"`
	ExtraAttempts int    `json:"extra_attempts" validate:"min=0,max=10"`
}

type attemptService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewAttemptService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *attemptService) EffectiveAttempts(ctx context.Context, assignmentID, userID string) (int, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrAssignmentNotFound
		}
		return 0, fmt.Errorf("failed to get assignment: %w", err)
	}

	extra := 0
	grant, err := s.repo.Override().GetGrant(ctx, assignmentID, userID)
	if err == nil {
		extra = grant.ExtraAttempts
	} else if !repositories.IsNotFoundError(err) {
		return 0, fmt.Errorf("failed to look up attempt grant: %w", err)
	}

	return assignment.MaxAttempts + extra, nil
}

func (s *attemptService) SubmittedCount(ctx context.Context, assignmentID, userID string) (int, error) {
	count, err := s.repo.Submission().CountByAssignmentAndUser(ctx, assignmentID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return int(count), nil
}

func (s *attemptService) CanSubmit(ctx context.Context, assignmentID, userID string) (bool, error) {
	effective, err := s.EffectiveAttempts(ctx, assignmentID, userID)
	if err != nil {
		return false, err
	}
	submitted, err := s.SubmittedCount(ctx, assignmentID, userID)
	if err != nil {
		return false, err
	}
	return submitted < effective, nil
}

func (s *attemptService) GrantExtraAttempts(ctx context.Context, req *GrantAttemptsRequest, grantedBy string) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if _, err := s.repo.Assignment().GetByID(ctx, req.AssignmentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	grant := &models.AttemptGrant{
		ID:            uuid.NewString(),
		AssignmentID:  req.AssignmentID,
		UserID:        req.UserID,
		ExtraAttempts: req.ExtraAttempts,
		GrantedBy:     grantedBy,
		GrantedAt:     time.Now(),
	}
	if err := s.repo.Override().UpsertGrant(ctx, grant); err != nil {
		return fmt.Errorf("failed to upsert attempt grant: %w", err)
	}

	s.logger.Info("extra attempts granted",
		"assignment_id", req.AssignmentID,
		"user_id", req.UserID,
		"extra_attempts", req.ExtraAttempts,
		"granted_by", grantedBy)
	return nil
}
