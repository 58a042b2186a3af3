package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CDP-2025/course-service/internal/events"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

// ProgressService is the idempotent completion ledger. Reporting the same
// (user, course, item) fact twice leaves exactly one record.
type ProgressService interface {
	// Report upserts a progress fact. A course-level completed/100% fact
	// additionally triggers certificate issuance; a failed issuance never
	// rolls back the progress write and is retryable by re-reporting.
	Report(ctx context.Context, req *ReportProgressRequest, userID string) (*models.ProgressRecord, error)
	ListForUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error)
	Summary(ctx context.Context, userID string) (*ProgressSummary, error)
}

type ReportProgressRequest struct {
	CourseID     string   `json:"course_id" validate:"required"`
	ItemType     string   `json:"item_type" validate:"required,progress_item_type"`
	AssignmentID string   `json:"assignment_id" validate:"omitempty"`
	QuizID       string   `json:"quiz_id" validate:"omitempty"`
	Status       string   `json:"status" validate:"required,progress_status"`
	Score        *float64 `json:"score"`
	MaxScore     *float64 `json:"max_score"`
	Percentage   *float64 `json:"percentage" validate:"omitempty,min=0,max=100"`
}

type ProgressSummary struct {
	ActiveCourses   int64   `json:"active_courses"`
	CompletedItems  int64   `json:"completed_items"`
	AverageProgress float64 `json:"average_progress"`
}

type progressService struct {
	repo         repositories.Repository
	certificates CertificateService
	publisher    events.EventPublisher
	logger       utils.Logger
	validator    *utils.Validator
}

func NewProgressService(repo repositories.Repository, certificates CertificateService, publisher events.EventPublisher, logger utils.Logger, validator *utils.Validator) ProgressService {
	return &progressService{
		repo:         repo,
		certificates: certificates,
		publisher:    publisher,
		logger:       logger,
		validator:    validator,
	}
}

func (s *progressService) Report(ctx context.Context, req *ReportProgressRequest, userID string) (*models.ProgressRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	record := &models.ProgressRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		CourseID:     req.CourseID,
		ItemType:     models.ProgressItemType(req.ItemType),
		AssignmentID: req.AssignmentID,
		QuizID:       req.QuizID,
		Status:       models.ProgressStatus(req.Status),
		Score:        req.Score,
		MaxScore:     req.MaxScore,
		Percentage:   req.Percentage,
	}
	if record.Status == models.ProgressCompleted {
		now := time.Now()
		record.CompletedAt = &now
	}

	if err := s.repo.Progress().Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to upsert progress record: %w", err)
	}

	s.logger.Info("progress reported",
		"user_id", userID,
		"course_id", req.CourseID,
		"item_type", req.ItemType,
		"status", req.Status)

	// Course fully completed: issue the certificate synchronously, best
	// effort. The progress write above stays committed either way; a failed
	// issuance is retried simply by reporting completion again.
	if record.IsCourseCompletion() {
		if _, err := s.certificates.Ensure(ctx, userID, req.CourseID, userID); err != nil {
			s.logger.Error("certificate issuance failed after course completion",
				"user_id", userID,
				"course_id", req.CourseID,
				"error", err)
		}

		event := events.NewDomainEvent(events.EventCourseCompleted, events.CourseCompletedEvent{
			UserID:     userID,
			CourseID:   req.CourseID,
			Percentage: 100,
		})
		if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish course completion event",
				"user_id", userID, "course_id", req.CourseID, "error", err)
		}
	}

	return record, nil
}

func (s *progressService) ListForUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error) {
	return s.repo.Progress().ListByUser(ctx, userID)
}

func (s *progressService) Summary(ctx context.Context, userID string) (*ProgressSummary, error) {
	active, err := s.repo.Enrollment().CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	completed, err := s.repo.Progress().CountCompleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed items: %w", err)
	}
	avg, err := s.repo.Progress().AveragePercentage(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to average progress: %w", err)
	}

	return &ProgressSummary{
		ActiveCourses:   active,
		CompletedItems:  completed,
		AverageProgress: avg,
	}, nil
}
