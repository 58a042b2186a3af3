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

// CourseService covers the thin catalog surface: courses and their quizzes.
type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, createdBy string) (*models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, limit, offset int) ([]*models.Course, int64, error)
	Update(ctx context.Context, id string, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error

	CreateQuiz(ctx context.Context, req *CreateQuizRequest, createdBy string) (*models.Quiz, error)
	// ListQuizzes returns the course's quizzes with each quiz's
	// custom_deadline attached for the listing user.
	ListQuizzes(ctx context.Context, courseID, userID string) ([]*models.Quiz, error)
}

type CreateCourseRequest struct {
	Code        string  `json:"code" validate:"required,max=50"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CreateQuizRequest struct {
	CourseID    string     `json:"course_id" validate:"required"`
	SectionID   *string    `json:"section_id"`
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	QuizURL     *string    `json:"quiz_url" validate:"omitempty,max=500"`
	DueDate     *time.Time `json:"due_date"`
	Duration    int        `json:"duration" validate:"omitempty,min=1,max=300"`
}

type courseService struct {
	repo      repositories.Repository
	deadlines DeadlineService
	logger    utils.Logger
	validator *utils.Validator
}

func NewCourseService(repo repositories.Repository, deadlines DeadlineService, logger utils.Logger, validator *utils.Validator) CourseService {
	return &courseService{
		repo:      repo,
		deadlines: deadlines,
		logger:    logger,
		validator: validator,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, createdBy string) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		ID:          uuid.NewString(),
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("course created", "course_id", course.ID, "code", course.Code)
	return course, nil
}

func (s *courseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, limit, offset int) ([]*models.Course, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.Course().List(ctx, limit, offset)
}

func (s *courseService) Update(ctx context.Context, id string, req *UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Course().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (s *courseService) CreateQuiz(ctx context.Context, req *CreateQuizRequest, createdBy string) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, req.CourseID); err != nil {
		return nil, err
	}

	duration := req.Duration
	if duration == 0 {
		duration = 30
	}

	quiz := &models.Quiz{
		ID:          uuid.NewString(),
		CourseID:    req.CourseID,
		SectionID:   req.SectionID,
		Title:       req.Title,
		Description: req.Description,
		QuizURL:     req.QuizURL,
		DueDate:     req.DueDate,
		Duration:    duration,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("quiz created", "quiz_id", quiz.ID, "course_id", req.CourseID)
	return quiz, nil
}

func (s *courseService) ListQuizzes(ctx context.Context, courseID, userID string) ([]*models.Quiz, error) {
	quizzes, err := s.repo.Quiz().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	if userID != "" {
		if err := s.deadlines.AttachQuizDeadlines(ctx, quizzes, userID); err != nil {
			return nil, err
		}
	}
	return quizzes, nil
}
