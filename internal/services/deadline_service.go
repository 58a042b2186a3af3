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

// DeadlineService computes the due date actually enforced for a user on an
// assignment or quiz, applying any per-user override on top of the shared
// base schedule.
type DeadlineService interface {
	// EffectiveDeadline resolves override ?? base due date. Always resolves
	// fresh; overrides are never cached.
	EffectiveDeadline(ctx context.Context, itemType models.OverrideItemType, itemID, userID string) (*time.Time, error)
	// SetOverride upserts the per-user deadline; repeated calls replace the
	// prior value for the (item, user) key.
	SetOverride(ctx context.Context, req *SetDeadlineOverrideRequest) error
	// AttachCustomDeadlines fills CustomDeadline on each assignment for the
	// listing user.
	AttachCustomDeadlines(ctx context.Context, assignments []*models.Assignment, userID string) error
	// AttachQuizDeadlines does the same for quizzes.
	AttachQuizDeadlines(ctx context.Context, quizzes []*models.Quiz, userID string) error
}

type SetDeadlineOverrideRequest struct {
	ItemType models.OverrideItemType `json:"item_type" validate:"required,oneof=assignment quiz"`
	ItemID   string                  `json:"item_id" validate:"required"`
	UserID   string                  `json:"user_id" validate:"required"`
	Deadline time.Time               `json:"deadline" validate:"required"`
}

type deadlineService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewDeadlineService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) DeadlineService {
	return &deadlineService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *deadlineService) EffectiveDeadline(ctx context.Context, itemType models.OverrideItemType, itemID, userID string) (*time.Time, error) {
	override, err := s.repo.Override().GetDeadline(ctx, itemType, itemID, userID)
	if err == nil {
		deadline := override.Deadline
		return &deadline, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up deadline override: %w", err)
	}

	switch itemType {
	case models.OverrideAssignment:
		assignment, err := s.repo.Assignment().GetByID(ctx, itemID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrAssignmentNotFound
			}
			return nil, fmt.Errorf("failed to get assignment: %w", err)
		}
		return assignment.DueDate, nil
	case models.OverrideQuiz:
		quiz, err := s.repo.Quiz().GetByID(ctx, itemID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrQuizNotFound
			}
			return nil, fmt.Errorf("failed to get quiz: %w", err)
		}
		return quiz.DueDate, nil
	default:
		return nil, fmt.Errorf("unknown deadline item type %q", itemType)
	}
}

func (s *deadlineService) SetOverride(ctx context.Context, req *SetDeadlineOverrideRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	override := &models.DeadlineOverride{
		ID:       uuid.NewString(),
		ItemType: req.ItemType,
		ItemID:   req.ItemID,
		UserID:   req.UserID,
		Deadline: req.Deadline,
	}
	if err := s.repo.Override().UpsertDeadline(ctx, override); err != nil {
		return fmt.Errorf("failed to upsert deadline override: %w", err)
	}

	s.logger.Info("deadline override set",
		"item_type", req.ItemType,
		"item_id", req.ItemID,
		"user_id", req.UserID,
		"deadline", req.Deadline)
	return nil
}

func (s *deadlineService) AttachCustomDeadlines(ctx context.Context, assignments []*models.Assignment, userID string) error {
	overrides, err := s.repo.Override().ListDeadlinesForUser(ctx, models.OverrideAssignment, userID)
	if err != nil {
		return fmt.Errorf("failed to list deadline overrides: %w", err)
	}

	byItem := make(map[string]time.Time, len(overrides))
	for _, o := range overrides {
		byItem[o.ItemID] = o.Deadline
	}
	for _, a := range assignments {
		if deadline, ok := byItem[a.ID]; ok {
			d := deadline
			a.CustomDeadline = &d
		}
	}
	return nil
}

func (s *deadlineService) AttachQuizDeadlines(ctx context.Context, quizzes []*models.Quiz, userID string) error {
	overrides, err := s.repo.Override().ListDeadlinesForUser(ctx, models.OverrideQuiz, userID)
	if err != nil {
		return fmt.Errorf("failed to list deadline overrides: %w", err)
	}

	byItem := make(map[string]time.Time, len(overrides))
	for _, o := range overrides {
		byItem[o.ItemID] = o.Deadline
	}
	for _, q := range quizzes {
		if deadline, ok := byItem[q.ID]; ok {
			d := deadline
			q.CustomDeadline = &d
		}
	}
	return nil
}
