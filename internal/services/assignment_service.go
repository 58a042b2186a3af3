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

type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest, createdBy string) (*models.Assignment, error)
	Get(ctx context.Context, id string) (*models.Assignment, error)
	// ListForUser returns assignments with each item's custom_deadline
	// attached for the listing user.
	ListForUser(ctx context.Context, courseID, userID string) ([]*models.Assignment, error)
	Update(ctx context.Context, id string, req *UpdateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error

	// Submit accepts a new submission after enforcing the attempt ceiling,
	// then records assignment progress for the course.
	Submit(ctx context.Context, req *SubmitAssignmentRequest, userID string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)
	// Grade mutates grading fields in place on the submission row.
	Grade(ctx context.Context, submissionID string, req *GradeSubmissionRequest, gradedBy string) error
}

type CreateAssignmentRequest struct {
	CourseID    string     `json:"course_id" validate:"required"`
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"due_date"`
	Points      int        `json:"points" validate:"min=0,max=1000"`
	MaxAttempts int        `json:"max_attempts" validate:"min=1,max=10"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low normal high"`
}

// UpdateAssignmentRequest names every mutable field explicitly; there is no
// generic column map on purpose.
type UpdateAssignmentRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"due_date"`
	Points      *int       `json:"points" validate:"omitempty,min=0,max=1000"`
	MaxAttempts *int       `json:"max_attempts" validate:"omitempty,min=1,max=10"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low normal high"`
	Status      *string    `json:"status" validate:"omitempty,oneof=open closed"`
}

type SubmitAssignmentRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	FilePath     string `json:"file_path" validate:"required,max=500"`
}

type GradeSubmissionRequest struct {
	MarksObtained *float64 `json:"marks_obtained" validate:"required,min=0"`
	Feedback      *string  `json:"feedback" validate:"omitempty,max=4000"`
	Status        string   `json:"status" validate:"omitempty,oneof=graded returned"`
}

type assignmentService struct {
	repo      repositories.Repository
	attempts  AttemptService
	deadlines DeadlineService
	progress  ProgressService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewAssignmentService(
	repo repositories.Repository,
	attempts AttemptService,
	deadlines DeadlineService,
	progress ProgressService,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) AssignmentService {
	return &assignmentService{
		repo:      repo,
		attempts:  attempts,
		deadlines: deadlines,
		progress:  progress,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, createdBy string) (*models.Assignment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 2
	}
	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	assignment := &models.Assignment{
		ID:          uuid.NewString(),
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Points:      req.Points,
		MaxAttempts: maxAttempts,
		Priority:    priority,
		Status:      "open",
		CreatedBy:   createdBy,
	}
	if err := s.repo.Assignment().Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("assignment created", "assignment_id", assignment.ID, "course_id", req.CourseID)
	return assignment, nil
}

func (s *assignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) ListForUser(ctx context.Context, courseID, userID string) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	var err error
	if courseID != "" {
		assignments, err = s.repo.Assignment().ListByCourse(ctx, courseID)
	} else {
		assignments, err = s.repo.Assignment().List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	if userID != "" {
		if err := s.deadlines.AttachCustomDeadlines(ctx, assignments, userID); err != nil {
			return nil, err
		}
	}
	return assignments, nil
}

func (s *assignmentService) Update(ctx context.Context, id string, req *UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = req.Description
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate
	}
	if req.Points != nil {
		assignment.Points = *req.Points
	}
	if req.MaxAttempts != nil {
		assignment.MaxAttempts = *req.MaxAttempts
	}
	if req.Priority != nil {
		assignment.Priority = *req.Priority
	}
	if req.Status != nil {
		assignment.Status = *req.Status
	}

	if err := s.repo.Assignment().Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Assignment().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

func (s *assignmentService) Submit(ctx context.Context, req *SubmitAssignmentRequest, userID string) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	assignment, err := s.Get(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}

	// Server-side ceiling check. The count-then-insert here is not a
	// correctness hazard the way certificates are: the worst interleaving
	// admits one extra attempt, it cannot mint duplicate state.
	ok, err := s.attempts.CanSubmit(ctx, req.AssignmentID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAttemptsExhausted
	}

	submission := &models.Submission{
		ID:           uuid.NewString(),
		AssignmentID: req.AssignmentID,
		UserID:       userID,
		FilePath:     req.FilePath,
		Status:       models.SubmissionSubmitted,
		SubmittedAt:  time.Now(),
	}
	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	s.logger.Info("submission accepted",
		"submission_id", submission.ID,
		"assignment_id", req.AssignmentID,
		"user_id", userID)

	// Record assignment-level progress; failure here does not undo the
	// accepted submission.
	progressReq := &ReportProgressRequest{
		CourseID:     assignment.CourseID,
		ItemType:     string(models.ProgressItemAssignment),
		AssignmentID: assignment.ID,
		Status:       string(models.ProgressCompleted),
	}
	if _, err := s.progress.Report(ctx, progressReq, userID); err != nil {
		s.logger.Error("failed to record submission progress",
			"submission_id", submission.ID, "error", err)
	}

	return submission, nil
}

func (s *assignmentService) ListSubmissions(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	return s.repo.Submission().List(ctx, filters)
}

func (s *assignmentService) Grade(ctx context.Context, submissionID string, req *GradeSubmissionRequest, gradedBy string) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to get submission: %w", err)
	}

	status := models.SubmissionStatus(req.Status)
	if req.Status == "" {
		status = models.SubmissionGraded
	}
	if err := s.repo.Submission().UpdateGrading(ctx, submissionID, req.MarksObtained, req.Feedback, status, gradedBy); err != nil {
		return fmt.Errorf("failed to grade submission: %w", err)
	}

	event := events.NewDomainEvent(events.EventSubmissionGraded, events.SubmissionGradedEvent{
		SubmissionID:  submissionID,
		AssignmentID:  submission.AssignmentID,
		UserID:        submission.UserID,
		MarksObtained: req.MarksObtained,
		GradedBy:      gradedBy,
	})
	if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish grading event", "submission_id", submissionID, "error", err)
	}

	s.logger.Info("submission graded", "submission_id", submissionID, "graded_by", gradedBy)
	return nil
}
