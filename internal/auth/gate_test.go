package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CDP-2025/course-service/internal/models"
)

type staticIdentityStore map[string]*Identity

func (s staticIdentityStore) ResolveIdentity(ctx context.Context, userID string) (*Identity, error) {
	if id, ok := s[userID]; ok {
		return id, nil
	}
	return nil, context.Canceled
}

func TestGate_Authorize(t *testing.T) {
	store := staticIdentityStore{
		"student": {UserID: "student", Roles: []models.RoleName{models.RoleStudent}},
		"admin":   {UserID: "admin", Roles: []models.RoleName{models.RoleAdmin}},
		"blocked": {UserID: "blocked", Roles: []models.RoleName{models.RoleAdmin}, IsBlocked: true},
	}
	gate := NewGate(store)
	ctx := context.Background()

	resolve := func(t *testing.T, userID string) *Identity {
		t.Helper()
		id, err := gate.Resolve(ctx, userID)
		require.NoError(t, err)
		return id
	}

	t.Run("role predicate passes for holders", func(t *testing.T) {
		assert.NoError(t, gate.Authorize(resolve(t, "admin"), HasRole(models.RoleAdmin)))
		assert.ErrorIs(t, gate.Authorize(resolve(t, "student"), HasRole(models.RoleAdmin)), ErrForbidden)
	})

	t.Run("any-of predicate", func(t *testing.T) {
		pred := HasAnyRole(models.RoleAdmin, models.RoleTeacher, models.RoleAccounts)
		assert.NoError(t, gate.Authorize(resolve(t, "admin"), pred))
		assert.ErrorIs(t, gate.Authorize(resolve(t, "student"), pred), ErrForbidden)
	})

	t.Run("anonymous fails every predicate", func(t *testing.T) {
		assert.ErrorIs(t, gate.Authorize(nil, Authenticated()), ErrUnauthenticated)
		assert.ErrorIs(t, gate.Authorize(&Identity{}, HasRole(models.RoleStudent)), ErrUnauthenticated)
	})

	t.Run("blocked fails even with the right role", func(t *testing.T) {
		assert.ErrorIs(t, gate.Authorize(resolve(t, "blocked"), HasRole(models.RoleAdmin)), ErrBlocked)
		assert.ErrorIs(t, gate.Authorize(resolve(t, "blocked"), Authenticated()), ErrBlocked)
	})

	t.Run("self-or-role", func(t *testing.T) {
		pred := SelfOrAnyRole("student", models.RoleAdmin)
		assert.NoError(t, gate.Authorize(resolve(t, "student"), pred))
		assert.NoError(t, gate.Authorize(resolve(t, "admin"), pred))

		other := SelfOrAnyRole("someone-else", models.RoleAdmin)
		assert.ErrorIs(t, gate.Authorize(resolve(t, "student"), other), ErrForbidden)
	})
}

func TestPredicates_MultiRole(t *testing.T) {
	id := &Identity{
		UserID: "u1",
		Roles:  []models.RoleName{models.RoleStudent, models.RoleTeacher},
	}
	assert.True(t, HasRole(models.RoleTeacher)(id))
	assert.True(t, HasAnyRole(models.RoleAdmin, models.RoleStudent)(id))
	assert.False(t, HasAnyRole(models.RoleAdmin, models.RoleAccounts)(id))
	assert.True(t, Authenticated()(id))
}
