package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse authorization level attached to every identity.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleMember     Role = "member"
	RoleClient     Role = "client"
)

// Identity is the resolved caller attached to every request. It is built
// once per request from the session token and never mutated afterwards.
type Identity struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID int64  `json:"company_id"`
	IsActive  bool   `json:"is_active"`
}

// IsStaff reports whether the identity belongs to internal staff rather
// than a portal (client) user.
func (i Identity) IsStaff() bool {
	return i.Role == RoleSuperAdmin || i.Role == RoleAdmin || i.Role == RoleMember
}

type UserInfo struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	CompanyID    int64     `db:"company_id"`
	Department   string    `db:"department"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// TokenGenerator creates tokens and expiration times.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return id, ok
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}
