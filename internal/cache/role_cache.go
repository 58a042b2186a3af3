package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/utils"
)

// RoleCacheTTL keeps cached role sets short-lived. The blocked flag is never
// cached; the identity store always reads it fresh.
const RoleCacheTTL = 30 * time.Second

// RoleCache caches per-user role sets.
type RoleCache interface {
	GetRoles(ctx context.Context, userID string) ([]models.RoleName, bool)
	SetRoles(ctx context.Context, userID string, roles []models.RoleName)
	Invalidate(ctx context.Context, userID string)
}

type redisRoleCache struct {
	client *redis.Client
	logger utils.Logger
	ttl    time.Duration
}

func NewRedisRoleCache(client *redis.Client, logger utils.Logger) RoleCache {
	return &redisRoleCache{
		client: client,
		logger: logger,
		ttl:    RoleCacheTTL,
	}
}

func roleCacheKey(userID string) string {
	return "roles:" + userID
}

func (c *redisRoleCache) GetRoles(ctx context.Context, userID string) ([]models.RoleName, bool) {
	raw, err := c.client.Get(ctx, roleCacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("role cache read failed", "user_id", userID, "error", err)
		}
		return nil, false
	}
	var roles []models.RoleName
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, false
	}
	return roles, true
}

func (c *redisRoleCache) SetRoles(ctx context.Context, userID string, roles []models.RoleName) {
	raw, err := json.Marshal(roles)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, roleCacheKey(userID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("role cache write failed", "user_id", userID, "error", err)
	}
}

func (c *redisRoleCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, roleCacheKey(userID)).Err(); err != nil {
		c.logger.Warn("role cache invalidation failed", "user_id", userID, "error", err)
	}
}

// NoopRoleCache disables caching; every authorize call resolves roles from
// the store.
type NoopRoleCache struct{}

func (NoopRoleCache) GetRoles(ctx context.Context, userID string) ([]models.RoleName, bool) {
	return nil, false
}
func (NoopRoleCache) SetRoles(ctx context.Context, userID string, roles []models.RoleName) {}
func (NoopRoleCache) Invalidate(ctx context.Context, userID string)                        {}
