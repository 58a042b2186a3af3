package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CDP-2025/course-service/internal/events"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

// CertificateService guarantees at most one certificate per (user, course).
type CertificateService interface {
	// Ensure returns the certificate for (user, course), creating it if
	// absent. Safe under concurrent completion reports for the same pair:
	// the insert races on the store's uniqueness constraint and the loser
	// receives the winner's row, never an error.
	Ensure(ctx context.Context, userID, courseID, generatedBy string) (*models.Certificate, error)
	GetByID(ctx context.Context, id string) (*models.Certificate, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Certificate, error)
	ListAll(ctx context.Context) ([]*models.Certificate, error)
	// AdminIssue is the explicit issuance path; it takes the same atomic
	// insert-if-absent route as automatic issuance.
	AdminIssue(ctx context.Context, req *AdminIssueCertificateRequest, issuedBy string) (*models.Certificate, error)
}

type AdminIssueCertificateRequest struct {
	UserID            string     `json:"user_id" validate:"required"`
	CourseID          string     `json:"course_id" validate:"required"`
	CertificateNumber string     `json:"certificate_number" validate:"omitempty,max=50"`
	CompletionDate    *time.Time `json:"completion_date"`
	SignatureText     *string    `json:"signature_text" validate:"omitempty,max=255"`
}

type certificateService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewCertificateService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, validator *utils.Validator) CertificateService {
	return &certificateService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// newCertificateNumber draws from a 48-bit random space, large enough that
// platform-wide collisions are not a practical concern; the unique index on
// certificate_number backstops the remote case.
func newCertificateNumber() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate certificate number: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func (s *certificateService) Ensure(ctx context.Context, userID, courseID, generatedBy string) (*models.Certificate, error) {
	number, err := newCertificateNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candidate := &models.Certificate{
		ID:                uuid.NewString(),
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: number,
		IssuedDate:        now,
		CompletionDate:    now,
		GeneratedBy:       generatedBy,
	}

	cert, created, err := s.repo.Certificate().InsertIfAbsent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure certificate: %w", err)
	}

	if created {
		s.logger.Info("certificate issued",
			"certificate_id", cert.ID,
			"certificate_number", cert.CertificateNumber,
			"user_id", userID,
			"course_id", courseID)
		s.publishIssued(ctx, cert)
	}
	return cert, nil
}

func (s *certificateService) publishIssued(ctx context.Context, cert *models.Certificate) {
	event := events.NewDomainEvent(events.EventCertificateIssued, events.CertificateIssuedEvent{
		CertificateID:     cert.ID,
		CertificateNumber: cert.CertificateNumber,
		UserID:            cert.UserID,
		CourseID:          cert.CourseID,
		IssuedDate:        cert.IssuedDate,
	})
	if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
		// Best effort: issuance already committed, the event is advisory.
		s.logger.Warn("failed to publish certificate event", "certificate_id", cert.ID, "error", err)
	}
}

func (s *certificateService) GetByID(ctx context.Context, id string) (*models.Certificate, error) {
	cert, err := s.repo.Certificate().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return cert, nil
}

func (s *certificateService) ListForUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	return s.repo.Certificate().ListByUser(ctx, userID)
}

func (s *certificateService) ListAll(ctx context.Context) ([]*models.Certificate, error) {
	return s.repo.Certificate().ListAll(ctx)
}

func (s *certificateService) AdminIssue(ctx context.Context, req *AdminIssueCertificateRequest, issuedBy string) (*models.Certificate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	number := req.CertificateNumber
	if number == "" {
		var err error
		if number, err = newCertificateNumber(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	completion := now
	if req.CompletionDate != nil {
		completion = *req.CompletionDate
	}

	candidate := &models.Certificate{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		CourseID:          req.CourseID,
		CertificateNumber: number,
		IssuedDate:        now,
		CompletionDate:    completion,
		GeneratedBy:       issuedBy,
		SignatureText:     req.SignatureText,
	}

	cert, created, err := s.repo.Certificate().InsertIfAbsent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to issue certificate: %w", err)
	}
	if created {
		s.logger.Info("certificate issued by admin",
			"certificate_id", cert.ID,
			"user_id", req.UserID,
			"course_id", req.CourseID,
			"issued_by", issuedBy)
		s.publishIssued(ctx, cert)
	}
	return cert, nil
}
