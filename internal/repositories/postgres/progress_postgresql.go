package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

// Upsert writes the ledger row in a single statement keyed on the composite
// unique index. No select-then-insert: a concurrent writer on the same key
// cannot be dropped, the store resolves the conflict by overwriting the
// mutable fields. The RETURNING clause writes the stored row back into
// record, so on conflict the caller sees the original row's id rather than
// the discarded candidate's.
func (r *ProgressPostgreSQL) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "course_id"}, {Name: "item_type"},
			{Name: "assignment_id"}, {Name: "quiz_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "score", "max_score", "percentage", "completed_at", "updated_at",
		}),
	}, clause.Returning{}).Create(record).Error
}

func (r *ProgressPostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error) {
	var records []*models.ProgressRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ProgressPostgreSQL) CountCompleted(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProgressRecord{}).
		Where("user_id = ? AND status = ?", userID, models.ProgressCompleted).
		Count(&count).Error
	return count, err
}

func (r *ProgressPostgreSQL) AveragePercentage(ctx context.Context, userID string) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&models.ProgressRecord{}).
		Where("user_id = ? AND percentage IS NOT NULL", userID).
		Select("AVG(percentage)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
