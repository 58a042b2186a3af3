package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CDP-2025/course-service/internal/models"
)

func TestDeadlineService_EffectiveDeadline(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewDeadlineService(repo, testLogger(), testValidator())

	base := time.Date(2026, 9, 15, 23, 59, 0, 0, time.UTC)
	repo.assignments["a1"] = &models.Assignment{
		ID: "a1", CourseID: "c1", Title: "Essay", DueDate: &base, MaxAttempts: 2, CreatedBy: "teacher-1",
	}

	t.Run("falls back to the base due date", func(t *testing.T) {
		got, err := svc.EffectiveDeadline(ctx, models.OverrideAssignment, "a1", "student-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equal(base))
	})

	t.Run("override wins over the base", func(t *testing.T) {
		extended := base.Add(72 * time.Hour)
		err := svc.SetOverride(ctx, &SetDeadlineOverrideRequest{
			ItemType: models.OverrideAssignment,
			ItemID:   "a1",
			UserID:   "student-1",
			Deadline: extended,
		})
		require.NoError(t, err)

		got, err := svc.EffectiveDeadline(ctx, models.OverrideAssignment, "a1", "student-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equal(extended))
	})

	t.Run("other users keep the base date", func(t *testing.T) {
		got, err := svc.EffectiveDeadline(ctx, models.OverrideAssignment, "a1", "student-2")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equal(base))
	})

	t.Run("resetting the override replaces, never duplicates", func(t *testing.T) {
		later := base.Add(7 * 24 * time.Hour)
		err := svc.SetOverride(ctx, &SetDeadlineOverrideRequest{
			ItemType: models.OverrideAssignment,
			ItemID:   "a1",
			UserID:   "student-1",
			Deadline: later,
		})
		require.NoError(t, err)

		got, err := svc.EffectiveDeadline(ctx, models.OverrideAssignment, "a1", "student-1")
		require.NoError(t, err)
		assert.True(t, got.Equal(later))
		assert.Len(t, repo.deadlines, 1)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := svc.EffectiveDeadline(ctx, models.OverrideAssignment, "missing", "student-1")
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})
}

func TestDeadlineService_QuizOverrides(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewDeadlineService(repo, testLogger(), testValidator())

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	repo.quizzes["q1"] = &models.Quiz{
		ID: "q1", CourseID: "c1", Title: "Midterm quiz", DueDate: &base, Duration: 30, CreatedBy: "teacher-1",
	}

	extended := base.Add(48 * time.Hour)
	err := svc.SetOverride(ctx, &SetDeadlineOverrideRequest{
		ItemType: models.OverrideQuiz,
		ItemID:   "q1",
		UserID:   "student-1",
		Deadline: extended,
	})
	require.NoError(t, err)

	got, err := svc.EffectiveDeadline(ctx, models.OverrideQuiz, "q1", "student-1")
	require.NoError(t, err)
	assert.True(t, got.Equal(extended))

	// An assignment override with the same item id never leaks into quizzes.
	_, err = svc.EffectiveDeadline(ctx, models.OverrideAssignment, "q1", "student-1")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDeadlineService_AttachCustomDeadlines(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewDeadlineService(repo, testLogger(), testValidator())

	base := time.Date(2026, 9, 15, 23, 59, 0, 0, time.UTC)
	extended := base.Add(24 * time.Hour)
	assignments := []*models.Assignment{
		{ID: "a1", CourseID: "c1", Title: "One", DueDate: &base},
		{ID: "a2", CourseID: "c1", Title: "Two", DueDate: &base},
	}
	require.NoError(t, svc.SetOverride(ctx, &SetDeadlineOverrideRequest{
		ItemType: models.OverrideAssignment,
		ItemID:   "a2",
		UserID:   "student-1",
		Deadline: extended,
	}))

	require.NoError(t, svc.AttachCustomDeadlines(ctx, assignments, "student-1"))

	assert.Nil(t, assignments[0].CustomDeadline)
	require.NotNil(t, assignments[1].CustomDeadline)
	assert.True(t, assignments[1].CustomDeadline.Equal(extended))
}
