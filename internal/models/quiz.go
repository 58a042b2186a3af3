package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CourseID    string     `json:"course_id" gorm:"not null;size:36;index"`
	SectionID   *string    `json:"section_id" gorm:"size:36;index"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	QuizURL     *string    `json:"quiz_url" gorm:"size:500"`
	DueDate     *time.Time `json:"due_date"`
	Duration    int        `json:"duration" gorm:"default:30" validate:"min=1,max=300"` // minutes
	IsHidden    bool       `json:"is_hidden" gorm:"default:false"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:36;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	CustomDeadline *time.Time `json:"custom_deadline,omitempty" gorm:"-"`
}

func (Quiz) TableName() string {
	return "section_quizzes"
}
