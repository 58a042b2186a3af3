package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
)

type CertificatePostgreSQL struct {
	db *gorm.DB
}

func NewCertificatePostgreSQL(db *gorm.DB) repositories.CertificateRepository {
	return &CertificatePostgreSQL{db: db}
}

// InsertIfAbsent is the one place a check-then-act race would mint duplicate
// certificates, so the insert and the uniqueness check are a single
// statement: ON CONFLICT (user_id, course_id) DO NOTHING. Zero rows affected
// means another writer won; fetch and return that row.
func (r *CertificatePostgreSQL) InsertIfAbsent(ctx context.Context, cert *models.Certificate) (*models.Certificate, bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(cert)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return cert, true, nil
	}

	existing, err := r.GetByUserAndCourse(ctx, cert.UserID, cert.CourseID)
	if err != nil {
		return nil, false, fmt.Errorf("certificate conflict but existing row not readable: %w", err)
	}
	return existing, false, nil
}

func (r *CertificatePostgreSQL) GetByID(ctx context.Context, id string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.WithContext(ctx).First(&cert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificatePostgreSQL) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificatePostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	var certs []*models.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_date DESC").
		Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *CertificatePostgreSQL) ListAll(ctx context.Context) ([]*models.Certificate, error) {
	var certs []*models.Certificate
	if err := r.db.WithContext(ctx).Order("issued_date DESC").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}
