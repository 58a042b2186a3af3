package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// DefaultLoginTTL is the lifetime of tokens issued at login.
	DefaultLoginTTL = 24 * time.Hour
	// DefaultImpersonationTTL is the lifetime of admin impersonation tokens.
	DefaultImpersonationTTL = time.Hour
)

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)

// Claims is the session payload. Tokens are self-contained: there is no
// server-side session row and no revocation list, so expiry is the only way
// a token stops working.
type Claims struct {
	Email          string `json:"email,omitempty"`
	ImpersonatedBy string `json:"impersonated_by,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
//
// Issuance always signs with the primary secret. Verification walks the
// ordered secret list (primary first, then historical secrets) and accepts
// the first signature match, so tokens issued before a rotation stay valid
// as long as their secret remains in the list. The asymmetry is deliberate.
type TokenService struct {
	secrets [][]byte
	now     func() time.Time
}

// NewTokenService builds a service from the primary secret and any number of
// historical secrets, in rotation order (most recent first).
func NewTokenService(primary string, historical ...string) (*TokenService, error) {
	if strings.TrimSpace(primary) == "" {
		return nil, errors.New("token service: primary secret must not be empty")
	}
	secrets := [][]byte{[]byte(primary)}
	for _, s := range historical {
		if strings.TrimSpace(s) == "" {
			continue
		}
		secrets = append(secrets, []byte(s))
	}
	return &TokenService{secrets: secrets, now: time.Now}, nil
}

// Issue creates a signed token for subjectID with the given TTL. Extra
// fields on claims (email, impersonated_by) are carried as-is; iat/exp are
// always set here.
func (s *TokenService) Issue(subjectID string, claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.Subject = subjectID
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secrets[0])
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token against every acceptable secret.
// Errors are one of ErrMalformedToken, ErrInvalidSignature, ErrTokenExpired;
// callers surface all three as a generic 401 without detail.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return nil, ErrMalformedToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	var lastErr error
	for _, secret := range s.secrets {
		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err == nil {
			return claims, nil
		}

		var vErr *jwt.ValidationError
		if !errors.As(err, &vErr) {
			return nil, ErrMalformedToken
		}
		switch {
		case vErr.Errors&jwt.ValidationErrorMalformed != 0:
			return nil, ErrMalformedToken
		case vErr.Errors&jwt.ValidationErrorExpired != 0:
			// Signature checked out under this secret; only the expiry failed.
			return nil, ErrTokenExpired
		case vErr.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
			lastErr = ErrInvalidSignature
			continue
		default:
			return nil, ErrMalformedToken
		}
	}

	if lastErr == nil {
		lastErr = ErrInvalidSignature
	}
	return nil, lastErr
}

// IsAuthError reports whether err came out of token verification. The HTTP
// layer maps all of these to a bare 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired)
}
