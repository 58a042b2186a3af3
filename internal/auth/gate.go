package auth

import (
	"context"
	"errors"

	"github.com/CDP-2025/course-service/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden - insufficient permissions")
	ErrBlocked         = errors.New("account blocked")
)

// Identity is a verified request principal with its freshly resolved roles.
type Identity struct {
	UserID         string
	Email          string
	Roles          []models.RoleName
	IsBlocked      bool
	ImpersonatedBy string
}

// Anonymous reports whether this identity represents an unauthenticated
// caller on a public endpoint.
func (id *Identity) Anonymous() bool {
	return id == nil || id.UserID == ""
}

func (id *Identity) hasRole(role models.RoleName) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Predicate is a composable access rule evaluated against an identity.
type Predicate func(id *Identity) bool

// Authenticated allows any signed-in identity regardless of role.
func Authenticated() Predicate {
	return func(id *Identity) bool {
		return !id.Anonymous()
	}
}

// HasRole allows identities holding the given role.
func HasRole(role models.RoleName) Predicate {
	return func(id *Identity) bool {
		return !id.Anonymous() && id.hasRole(role)
	}
}

// HasAnyRole allows identities holding at least one of the given roles.
func HasAnyRole(roles ...models.RoleName) Predicate {
	return func(id *Identity) bool {
		if id.Anonymous() {
			return false
		}
		for _, role := range roles {
			if id.hasRole(role) {
				return true
			}
		}
		return false
	}
}

// SelfOrAnyRole allows the user themselves, or anyone holding one of roles.
func SelfOrAnyRole(userID string, roles ...models.RoleName) Predicate {
	return func(id *Identity) bool {
		if id.Anonymous() {
			return false
		}
		if id.UserID == userID {
			return true
		}
		return HasAnyRole(roles...)(id)
	}
}

// IdentityStore resolves a verified token subject into an identity. The
// blocked flag must be read fresh on every call; only the role set may come
// from a short-lived cache.
type IdentityStore interface {
	ResolveIdentity(ctx context.Context, userID string) (*Identity, error)
}

// Gate evaluates access predicates for resolved identities. It is pure with
// respect to stored data: lookups only, no side effects.
type Gate struct {
	store IdentityStore
}

func NewGate(store IdentityStore) *Gate {
	return &Gate{store: store}
}

// Resolve turns a verified subject id into an identity.
func (g *Gate) Resolve(ctx context.Context, userID string) (*Identity, error) {
	return g.store.ResolveIdentity(ctx, userID)
}

// Authorize checks a predicate against an identity. A blocked identity fails
// every predicate; the one endpoint that lets a client discover its block
// status bypasses Authorize and inspects the identity directly.
func (g *Gate) Authorize(id *Identity, pred Predicate) error {
	if id.Anonymous() {
		return ErrUnauthenticated
	}
	if id.IsBlocked {
		return ErrBlocked
	}
	if !pred(id) {
		return ErrForbidden
	}
	return nil
}
