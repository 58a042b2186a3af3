package models

import (
	"time"

	"gorm.io/gorm"
)

// Course, Section and Material are the catalog glue around the core. Their
// CRUD is intentionally thin; the interesting state hangs off assignments,
// quizzes, progress and certificates.
type Course struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null;size:50" validate:"required,max=50"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:36;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}

type Section struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	CourseID string `json:"course_id" gorm:"not null;size:36;index"`
	Title    string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Position int    `json:"position" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Materials []Material `json:"materials,omitempty" gorm:"foreignKey:SectionID"`
}

func (Section) TableName() string {
	return "sections"
}

type Material struct {
	ID        string  `json:"id" gorm:"primaryKey;size:36"`
	SectionID string  `json:"section_id" gorm:"not null;size:36;index"`
	Title     string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Kind      string  `json:"kind" gorm:"not null;size:30"` // document, video, link
	URL       *string `json:"url" gorm:"size:500"`
	IsHidden  bool    `json:"is_hidden" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "materials"
}

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

type Enrollment struct {
	ID       string           `json:"id" gorm:"primaryKey;size:36"`
	UserID   string           `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_enrollments_user_course,priority:1"`
	CourseID string           `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_enrollments_user_course,priority:2"`
	Status   EnrollmentStatus `json:"status" gorm:"default:active;size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
