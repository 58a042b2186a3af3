package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
)

type OverridePostgreSQL struct {
	db *gorm.DB
}

func NewOverridePostgreSQL(db *gorm.DB) repositories.OverrideRepository {
	return &OverridePostgreSQL{db: db}
}

// UpsertDeadline is last-write-wins on the (item_type, item_id, user_id)
// unique key. Concurrent writers are serialized by the conflict clause, not
// by application locking.
func (r *OverridePostgreSQL) UpsertDeadline(ctx context.Context, override *models.DeadlineOverride) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "item_type"}, {Name: "item_id"}, {Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"deadline", "updated_at"}),
	}).Create(override).Error
}

func (r *OverridePostgreSQL) GetDeadline(ctx context.Context, itemType models.OverrideItemType, itemID, userID string) (*models.DeadlineOverride, error) {
	var override models.DeadlineOverride
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ? AND user_id = ?", itemType, itemID, userID).
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *OverridePostgreSQL) ListDeadlinesForUser(ctx context.Context, itemType models.OverrideItemType, userID string) ([]*models.DeadlineOverride, error) {
	var overrides []*models.DeadlineOverride
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND user_id = ?", itemType, userID).
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

// UpsertGrant replaces the extra-attempts value for the (assignment, user)
// key along with the granting admin and grant time.
func (r *OverridePostgreSQL) UpsertGrant(ctx context.Context, grant *models.AttemptGrant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "assignment_id"}, {Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"extra_attempts", "granted_by", "granted_at", "updated_at"}),
	}).Create(grant).Error
}

func (r *OverridePostgreSQL) GetGrant(ctx context.Context, assignmentID, userID string) (*models.AttemptGrant, error) {
	var grant models.AttemptGrant
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}
