package auth

import (
	"context"
	"fmt"

	"github.com/CDP-2025/course-service/internal/cache"
	"github.com/CDP-2025/course-service/internal/repositories"
)

// RepositoryIdentityStore resolves identities from the user store, with an
// optional short-lived role cache. The user row (and with it the blocked
// flag) is fetched fresh on every call so a block takes effect immediately.
type RepositoryIdentityStore struct {
	users     repositories.UserRepository
	roleCache cache.RoleCache
}

func NewRepositoryIdentityStore(users repositories.UserRepository, roleCache cache.RoleCache) *RepositoryIdentityStore {
	if roleCache == nil {
		roleCache = cache.NoopRoleCache{}
	}
	return &RepositoryIdentityStore{users: users, roleCache: roleCache}
}

func (s *RepositoryIdentityStore) ResolveIdentity(ctx context.Context, userID string) (*Identity, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity %s: %w", userID, err)
	}

	roles, ok := s.roleCache.GetRoles(ctx, userID)
	if !ok {
		roles, err = s.users.GetRoles(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve roles for %s: %w", userID, err)
		}
		s.roleCache.SetRoles(ctx, userID, roles)
	}

	return &Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     roles,
		IsBlocked: user.IsBlocked,
	}, nil
}

// InvalidateRoles drops the cached role set after a role change so the next
// authorize call sees the new assignment immediately.
func (s *RepositoryIdentityStore) InvalidateRoles(ctx context.Context, userID string) {
	s.roleCache.Invalidate(ctx, userID)
}

var _ IdentityStore = (*RepositoryIdentityStore)(nil)
