package services

import (
	"context"
	"fmt"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

// UserService covers the admin-side user management surface.
type UserService interface {
	List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error)
	Get(ctx context.Context, id string) (*models.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	// UpdateRoles has replace-all semantics: the user ends up holding
	// exactly the given set, prior assignments included in it or not.
	UpdateRoles(ctx context.Context, id string, roles []string) error
}

type userService struct {
	repo     repositories.Repository
	identity *auth.RepositoryIdentityStore
	logger   utils.Logger
}

func NewUserService(repo repositories.Repository, identity *auth.RepositoryIdentityStore, logger utils.Logger) UserService {
	return &userService{
		repo:     repo,
		identity: identity,
		logger:   logger,
	}
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	for _, user := range users {
		roles, err := s.repo.User().GetRoles(ctx, user.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load roles for %s: %w", user.ID, err)
		}
		user.Roles = roles
	}
	return users, total, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	roles, err := s.repo.User().GetRoles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

func (s *userService) SetBlocked(ctx context.Context, id string, blocked bool) error {
	if _, err := s.repo.User().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.repo.User().SetBlocked(ctx, id, blocked); err != nil {
		return fmt.Errorf("failed to update blocked status: %w", err)
	}
	s.logger.Info("user blocked status updated", "user_id", id, "blocked", blocked)
	return nil
}

func (s *userService) UpdateRoles(ctx context.Context, id string, roleNames []string) error {
	if _, err := s.repo.User().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	roles := make([]models.RoleName, 0, len(roleNames))
	for _, name := range roleNames {
		if !models.IsValidRole(name) {
			return fmt.Errorf("%w: %s", ErrUnknownRole, name)
		}
		roles = append(roles, models.RoleName(name))
	}

	if err := s.repo.User().ReplaceRoles(ctx, id, roles); err != nil {
		return fmt.Errorf("failed to replace roles: %w", err)
	}
	// Drop the cached role set so the change is visible on the next request.
	s.identity.InvalidateRoles(ctx, id)

	s.logger.Info("user roles replaced", "user_id", id, "roles", roleNames)
	return nil
}
