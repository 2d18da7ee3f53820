// Package auth issues and verifies the bearer credentials that identify
// callers to the task service.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Maleek6526/TaskManagerApplication/internal/domain"
)

// Config holds the signing parameters injected once at startup and never
// mutated per-request.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the payload extracted from a verified token.
type Claims struct {
	UserID    int64
	Username  string
	Role      domain.Role
	ExpiresAt time.Time
}

// Identity converts the claims to the domain identity the pipeline consumes.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{ID: c.UserID, Username: c.Username, Role: c.Role}
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken covers malformed, expired, and badly-signed tokens
// alike; the cause is deliberately not distinguishable by the caller.
var ErrInvalidToken = errors.New("invalid bearer token")

// Parse validates a token and returns normalized claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	id, ok := mapClaims["id"].(float64)
	if !ok || id <= 0 {
		return nil, ErrInvalidToken
	}
	username, _ := mapClaims["username"].(string)
	rawRole, _ := mapClaims["role"].(string)
	role, err := domain.ParseRole(rawRole)
	if err != nil || username == "" {
		return nil, ErrInvalidToken
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    int64(id),
		Username:  username,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}

// Issue signs a token for an authenticated user. Only login calls this.
func Issue(user domain.User, cfg Config, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"id":       user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"iss":      cfg.Issuer,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}
