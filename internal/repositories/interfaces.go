package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/CDP-2025/course-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SubmissionFilters struct {
	AssignmentID *string                  `json:"assignment_id"`
	UserID       *string                  `json:"user_id"`
	CourseID     *string                  `json:"course_id"`
	Status       *models.SubmissionStatus `json:"status"`
	Limit        int                      `json:"limit"`
	Offset       int                      `json:"offset"`
}

type UserFilters struct {
	Role    *models.RoleName `json:"role"`
	Blocked *bool            `json:"blocked"`
	Search  string           `json:"search"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	SetBlocked(ctx context.Context, id string, blocked bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	GetRoles(ctx context.Context, userID string) ([]models.RoleName, error)
	AddRole(ctx context.Context, userID string, role models.RoleName) error
	// ReplaceRoles clears every role row for the user and inserts the new
	// set atomically.
	ReplaceRoles(ctx context.Context, userID string, roles []models.RoleName) error
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, limit, offset int) ([]*models.Course, int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.Assignment, error)
	List(ctx context.Context) ([]*models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id string) error
}

type SubmissionRepository interface {
	// Create appends a new submission row; rows are never overwritten.
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, int64, error)
	CountByAssignmentAndUser(ctx context.Context, assignmentID, userID string) (int64, error)
	// UpdateGrading mutates only the grading fields, in place.
	UpdateGrading(ctx context.Context, id string, marks *float64, feedback *string, status models.SubmissionStatus, gradedBy string) error
	Delete(ctx context.Context, id string) error
}

type OverrideRepository interface {
	// UpsertDeadline replaces any prior override for the (item, user) key.
	UpsertDeadline(ctx context.Context, override *models.DeadlineOverride) error
	GetDeadline(ctx context.Context, itemType models.OverrideItemType, itemID, userID string) (*models.DeadlineOverride, error)
	ListDeadlinesForUser(ctx context.Context, itemType models.OverrideItemType, userID string) ([]*models.DeadlineOverride, error)

	// UpsertGrant replaces any prior extra-attempt grant for the
	// (assignment, user) key.
	UpsertGrant(ctx context.Context, grant *models.AttemptGrant) error
	GetGrant(ctx context.Context, assignmentID, userID string) (*models.AttemptGrant, error)
}

type ProgressRepository interface {
	// Upsert writes the record atomically on its composite unique key; the
	// store resolves concurrent writers, not the application.
	Upsert(ctx context.Context, record *models.ProgressRecord) error
	ListByUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error)
	CountCompleted(ctx context.Context, userID string) (int64, error)
	AveragePercentage(ctx context.Context, userID string) (float64, error)
}

type CertificateRepository interface {
	// InsertIfAbsent attempts an atomic conditional insert against the
	// (user, course) uniqueness constraint. It returns the stored row and
	// whether this call created it; on conflict the pre-existing row is
	// fetched and returned instead of an error.
	InsertIfAbsent(ctx context.Context, cert *models.Certificate) (*models.Certificate, bool, error)
	GetByID(ctx context.Context, id string) (*models.Certificate, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error)
	ListAll(ctx context.Context) ([]*models.Certificate, error)
}

type EnrollmentRepository interface {
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
}

// Repository aggregates all stores behind one constructor-injected value.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Assignment() AssignmentRepository
	Quiz() QuizRepository
	Submission() SubmissionRepository
	Override() OverrideRepository
	Progress() ProgressRepository
	Certificate() CertificateRepository
	Enrollment() EnrollmentRepository
}

// IsNotFoundError reports whether err is the store's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
