package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (r *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Blocked != nil {
		query = query.Where("is_blocked = ?", *filters.Blocked)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("email ILIKE ? OR full_name ILIKE ?", like, like)
	}
	if filters.Role != nil {
		query = query.Where("id IN (?)",
			r.db.Model(&models.UserRole{}).Select("user_id").Where("role = ?", *filters.Role))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserPostgreSQL) SetBlocked(ctx context.Context, id string, blocked bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_blocked", blocked).Error
}

func (r *UserPostgreSQL) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *UserPostgreSQL) GetRoles(ctx context.Context, userID string) ([]models.RoleName, error) {
	var rows []models.UserRole
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]models.RoleName, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role)
	}
	return roles, nil
}

func (r *UserPostgreSQL) AddRole(ctx context.Context, userID string, role models.RoleName) error {
	return r.db.WithContext(ctx).Create(&models.UserRole{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   role,
	}).Error
}

// ReplaceRoles implements replace-all semantics: the update clears prior
// assignments for the user, then inserts the new set, in one transaction.
func (r *UserPostgreSQL) ReplaceRoles(ctx context.Context, userID string, roles []models.RoleName) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, role := range roles {
			row := models.UserRole{
				ID:     uuid.NewString(),
				UserID: userID,
				Role:   role,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
