package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	// Impersonate issues a short-lived token for the target user, stamped
	// with the acting admin's id.
	Impersonate(ctx context.Context, targetUserID, adminID string) (string, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string            `json:"token"`
	User  *models.User      `json:"user"`
	Roles []models.RoleName `json:"roles"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=1,max=100"`
	Role     string `json:"role" validate:"omitempty,user_role"`
}

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenService
	logger    utils.Logger
	validator *utils.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenService, logger utils.Logger, validator *utils.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		logger:    logger,
		validator: validator,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}

	token, err := s.tokens.Issue(user.ID, auth.Claims{Email: user.Email}, auth.DefaultLoginTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	roles, err := s.repo.User().GetRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles

	if err := s.repo.User().TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &LoginResponse{Token: token, User: user, Roles: roles}, nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.User().GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleName(req.Role)
	if req.Role == "" {
		role = models.RoleStudent
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.repo.User().AddRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	user.Roles = []models.RoleName{role}

	s.logger.Info("user registered", "user_id", user.ID, "role", role)
	return user, nil
}

// Me stays reachable for blocked users so the client can discover its block
// status; every other endpoint rejects a blocked identity outright.
func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	roles, err := s.repo.User().GetRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

func (s *authService) Impersonate(ctx context.Context, targetUserID, adminID string) (string, error) {
	target, err := s.repo.User().GetByID(ctx, targetUserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.tokens.Issue(target.ID, auth.Claims{
		Email:          target.Email,
		ImpersonatedBy: adminID,
	}, auth.DefaultImpersonationTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue impersonation token: %w", err)
	}

	s.logger.Info("impersonation token issued", "target_user_id", targetUserID, "admin_id", adminID)
	return token, nil
}
