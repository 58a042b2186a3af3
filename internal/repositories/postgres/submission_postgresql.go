package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (r *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Submission{})
	if filters.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filters.AssignmentID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CourseID != nil {
		query = query.Where("assignment_id IN (?)",
			r.db.Model(&models.Assignment{}).Select("id").Where("course_id = ?", *filters.CourseID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (r *SubmissionPostgreSQL) CountByAssignmentAndUser(ctx context.Context, assignmentID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Count(&count).Error
	return count, err
}

// UpdateGrading touches only the named grading columns. Explicit fields, no
// client-supplied column maps.
func (r *SubmissionPostgreSQL) UpdateGrading(ctx context.Context, id string, marks *float64, feedback *string, status models.SubmissionStatus, gradedBy string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"marks_obtained": marks,
			"feedback":       feedback,
			"status":         status,
			"graded_by":      gradedBy,
			"graded_at":      now,
		}).Error
}

func (r *SubmissionPostgreSQL) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Submission{}, "id = ?", id).Error
}
