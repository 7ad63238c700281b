package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

var _ ports.TokenIssuer = (*TokenIssuer)(nil)

// TokenIssuer signs and parses HS256 bearer tokens.
type TokenIssuer struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewTokenIssuer returns an issuer. A non-positive ttl falls back to 24h.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, nowFunc: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue returns a signed token for the account.
func (t *TokenIssuer) Issue(accountID string, role domain.Role) (string, error) {
	now := t.nowFunc()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates signature and expiry. Any failure is reported as
// domain.ErrSessionRejected.
func (t *TokenIssuer) Parse(token string) (ports.Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.nowFunc))
	if err != nil || !parsed.Valid {
		return ports.Claims{}, fmt.Errorf("%w: %v", domain.ErrSessionRejected, err)
	}
	if claims.Subject == "" {
		return ports.Claims{}, fmt.Errorf("%w: token has no subject", domain.ErrSessionRejected)
	}

	var exp int64
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Unix()
	}
	return ports.Claims{
		AccountID: claims.Subject,
		Role:      domain.Role(claims.Role).Normalize(),
		TokenID:   claims.ID,
		ExpiresAt: exp,
	}, nil
}
