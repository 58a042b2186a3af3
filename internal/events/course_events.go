package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCertificateIssued EventType = "certificate.issued"
	EventSubmissionGraded  EventType = "submission.graded"
	EventCourseCompleted   EventType = "course.completed"
)

// DomainEvent is the envelope published to Kafka for every platform event.
type DomainEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewDomainEvent(eventType EventType, data interface{}) *DomainEvent {
	return &DomainEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "course-service",
		Version:   "1.0",
		Timestamp: time.Now(),
		Data:      data,
	}
}

type CertificateIssuedEvent struct {
	CertificateID     string    `json:"certificate_id"`
	CertificateNumber string    `json:"certificate_number"`
	UserID            string    `json:"user_id"`
	CourseID          string    `json:"course_id"`
	IssuedDate        time.Time `json:"issued_date"`
}

type SubmissionGradedEvent struct {
	SubmissionID  string   `json:"submission_id"`
	AssignmentID  string   `json:"assignment_id"`
	UserID        string   `json:"user_id"`
	MarksObtained *float64 `json:"marks_obtained"`
	GradedBy      string   `json:"graded_by"`
}

type CourseCompletedEvent struct {
	UserID     string  `json:"user_id"`
	CourseID   string  `json:"course_id"`
	Percentage float64 `json:"percentage"`
}
