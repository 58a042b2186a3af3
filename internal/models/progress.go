package models

import "time"

type ProgressItemType string

const (
	ProgressItemCourse     ProgressItemType = "course"
	ProgressItemMaterial   ProgressItemType = "material"
	ProgressItemAssignment ProgressItemType = "assignment"
	ProgressItemQuiz       ProgressItemType = "quiz"
)

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// ProgressRecord is the idempotent ledger row for one (user, course, item)
// fact. The composite unique index is the upsert target: reporting the same
// key again overwrites status/score/percentage instead of inserting.
//
// AssignmentID and QuizID default to empty strings rather than NULLs so the
// unique index compares equal for repeated course- and material-level facts
// (NULLs never collide in a Postgres unique index).
type ProgressRecord struct {
	ID           string           `json:"id" gorm:"primaryKey;size:36"`
	UserID       string           `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_progress_key,priority:1"`
	CourseID     string           `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_progress_key,priority:2"`
	ItemType     ProgressItemType `json:"item_type" gorm:"not null;size:20;uniqueIndex:idx_progress_key,priority:3" validate:"required,progress_item_type"`
	AssignmentID string           `json:"assignment_id,omitempty" gorm:"size:36;default:'';uniqueIndex:idx_progress_key,priority:4"`
	QuizID       string           `json:"quiz_id,omitempty" gorm:"size:36;default:'';uniqueIndex:idx_progress_key,priority:5"`

	Status     ProgressStatus `json:"status" gorm:"not null;size:20" validate:"required,progress_status"`
	Score      *float64       `json:"score"`
	MaxScore   *float64       `json:"max_score"`
	Percentage *float64       `json:"percentage" validate:"omitempty,min=0,max=100"`

	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ProgressRecord) TableName() string {
	return "progress_tracking"
}

// IsCourseCompletion reports whether this record is a course-level 100%
// completion fact, the trigger for automatic certificate issuance.
func (p *ProgressRecord) IsCourseCompletion() bool {
	return p.ItemType == ProgressItemCourse &&
		p.Status == ProgressCompleted &&
		p.Percentage != nil && *p.Percentage >= 100
}
