package models

import (
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CourseID    string     `json:"course_id" gorm:"not null;size:36;index"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"due_date"`
	Points      int        `json:"points" gorm:"default:100" validate:"min=0,max=1000"`
	// MaxAttempts is the shared base ceiling; per-user grants add to it.
	MaxAttempts int    `json:"max_attempts" gorm:"default:2" validate:"min=1,max=10"`
	Priority    string `json:"priority" gorm:"default:normal;size:20"`
	Status      string `json:"status" gorm:"default:open;size:20"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:36;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Computed for listings (not stored)
	CustomDeadline *time.Time `json:"custom_deadline,omitempty" gorm:"-"`
}

func (Assignment) TableName() string {
	return "assignments"
}

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
	SubmissionReturned  SubmissionStatus = "returned"
)

// Submission rows are append-only: a resubmission inserts a new row. Only the
// grading fields are ever mutated in place.
type Submission struct {
	ID           string           `json:"id" gorm:"primaryKey;size:36"`
	AssignmentID string           `json:"assignment_id" gorm:"not null;size:36;index:idx_submissions_assignment_user,priority:1"`
	UserID       string           `json:"user_id" gorm:"not null;size:36;index:idx_submissions_assignment_user,priority:2"`
	FilePath     string           `json:"file_path" gorm:"not null;size:500"`
	Status       SubmissionStatus `json:"status" gorm:"default:submitted;size:20"`
	SubmittedAt  time.Time        `json:"submitted_at"`

	// Grading fields
	MarksObtained *float64   `json:"marks_obtained"`
	Feedback      *string    `json:"feedback" gorm:"type:text"`
	GradedBy      *string    `json:"graded_by" gorm:"size:36"`
	GradedAt      *time.Time `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "assignment_submissions"
}

type OverrideItemType string

const (
	OverrideAssignment OverrideItemType = "assignment"
	OverrideQuiz       OverrideItemType = "quiz"
)

// DeadlineOverride holds a per-user due date replacing the item's base due
// date. At most one row per (item_type, item_id, user_id); writes are
// last-write-wins upserts.
type DeadlineOverride struct {
	ID       string           `json:"id" gorm:"primaryKey;size:36"`
	ItemType OverrideItemType `json:"item_type" gorm:"not null;size:20;uniqueIndex:idx_deadline_overrides_item_user,priority:1" validate:"required,oneof=assignment quiz"`
	ItemID   string           `json:"item_id" gorm:"not null;size:36;uniqueIndex:idx_deadline_overrides_item_user,priority:2"`
	UserID   string           `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_deadline_overrides_item_user,priority:3"`
	Deadline time.Time        `json:"deadline" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DeadlineOverride) TableName() string {
	return "deadline_overrides"
}

// AttemptGrant gives a user extra submission attempts on one assignment.
// Upserts replace the prior extra count rather than adding to it.
type AttemptGrant struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	AssignmentID  string    `json:"assignment_id" gorm:"not null;size:36;uniqueIndex:idx_attempt_grants_assignment_user,priority:1"`
	UserID        string    `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_attempt_grants_assignment_user,priority:2"`
	ExtraAttempts int       `json:"extra_attempts" gorm:"not null" validate:"min=0,max=10"`
	GrantedBy     string    `json:"granted_by" gorm:"not null;size:36"`
	GrantedAt     time.Time `json:"granted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AttemptGrant) TableName() string {
	return "assignment_extra_attempts"
}
