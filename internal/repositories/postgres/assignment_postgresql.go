package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (r *AssignmentPostgreSQL) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *AssignmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentPostgreSQL) ListByCourse(ctx context.Context, courseID string) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC NULLS LAST").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *AssignmentPostgreSQL) List(ctx context.Context) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := r.db.WithContext(ctx).
		Order("due_date ASC NULLS LAST").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *AssignmentPostgreSQL) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *AssignmentPostgreSQL) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Assignment{}, "id = ?", id).Error
}

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (r *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *QuizPostgreSQL) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizPostgreSQL) ListByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC NULLS LAST").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Save(quiz).Error
}

func (r *QuizPostgreSQL) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Quiz{}, "id = ?", id).Error
}
