package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PortalSession is the lighter identity used by the client portal. It is
// issued and verified independently of the staff session mechanism.
type PortalSession struct {
	ContactID int64 `json:"contact_id"`
	ClientID  int64 `json:"client_id"`
	CompanyID int64 `json:"company_id"`
}

// Identity converts the portal session into a request identity with the
// CLIENT role. Portal users are never staff.
func (p PortalSession) Identity() *Identity {
	return &Identity{
		UserID:    p.ContactID,
		Role:      RoleClient,
		CompanyID: p.CompanyID,
		IsActive:  true,
	}
}

type portalSessionKey struct{}

func ContextWithPortalSession(ctx context.Context, session *PortalSession) context.Context {
	return context.WithValue(ctx, portalSessionKey{}, session)
}

func PortalSessionFromContext(ctx context.Context) (*PortalSession, bool) {
	session, ok := ctx.Value(portalSessionKey{}).(*PortalSession)
	return session, ok
}

type portalClaims struct {
	ContactID int64 `json:"contact_id"`
	ClientID  int64 `json:"client_id"`
	CompanyID int64 `json:"company_id"`
	jwt.RegisteredClaims
}

// PortalTokenService signs and verifies portal bearer tokens with a fixed
// expiry. Verification failures are reported to the caller, who treats the
// request as anonymous rather than rejecting it outright.
type PortalTokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewPortalTokenService(secret string, ttl time.Duration) *PortalTokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PortalTokenService{secret: []byte(secret), ttl: ttl}
}

func (p *PortalTokenService) Issue(session PortalSession) (string, error) {
	now := time.Now()
	claims := &portalClaims{
		ContactID: session.ContactID,
		ClientID:  session.ClientID,
		CompanyID: session.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify parses a portal token. ok is false for any invalid or expired
// token; the caller falls back to anonymous access.
func (p *PortalTokenService) Verify(tokenString string) (*PortalSession, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &portalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isHMAC := token.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(*portalClaims)
	if !ok {
		return nil, false
	}
	return &PortalSession{
		ContactID: claims.ContactID,
		ClientID:  claims.ClientID,
		CompanyID: claims.CompanyID,
	}, true
}
