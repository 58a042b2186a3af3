package models

import "time"

// Certificate is uniquely keyed by (user_id, course_id); the unique index is
// what makes at-most-once issuance hold under concurrent completion reports.
// Certificates are never deleted automatically.
type Certificate struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	UserID            string    `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_certificates_user_course,priority:1"`
	CourseID          string    `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_certificates_user_course,priority:2"`
	CertificateNumber string    `json:"certificate_number" gorm:"uniqueIndex;not null;size:50"`
	IssuedDate        time.Time `json:"issued_date"`
	CompletionDate    time.Time `json:"completion_date"`
	GeneratedBy       string    `json:"generated_by" gorm:"not null;size:36"`
	SignatureText     *string   `json:"signature_text" gorm:"size:255"`
	FilePath          *string   `json:"file_path" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}
