// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/kurakampus-api/internal/config"
	"github.com/carterperez-dev/kurakampus-api/internal/core"
	"github.com/carterperez-dev/kurakampus-api/internal/middleware"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenManager signs and verifies access and refresh tokens. The two
// token kinds use independent HMAC secrets and lifetimes.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	accessExpire  string
	issuer        string
	audience      string
	now           func() time.Time
}

type Claims struct {
	UserID string
	Email  string
	Role   string
}

type RefreshClaims struct {
	Claims
	TokenID   string
	ExpiresAt time.Time
}

func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt secrets must be set: %w", core.ErrInvalidInput)
	}

	accessTTL, err := core.ParseLifetime(cfg.AccessExpire)
	if err != nil {
		return nil, fmt.Errorf("access token lifetime: %w", err)
	}

	refreshTTL, err := core.ParseLifetime(cfg.RefreshExpire)
	if err != nil {
		return nil, fmt.Errorf("refresh token lifetime: %w", err)
	}

	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		accessExpire:  cfg.AccessExpire,
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		now:           time.Now,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *TokenManager) AccessExpiresIn() int {
	return core.ExpiresInSeconds(m.accessExpire)
}

func (m *TokenManager) CreateAccessToken(claims Claims) (string, error) {
	now := m.now()

	token, err := m.builder(claims, tokenTypeAccess, now).
		Expiration(now.Add(m.accessTTL)).
		NotBefore(now).
		Build()
	if err != nil {
		return "", fmt.Errorf("build access token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.accessSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return string(signed), nil
}

// CreateRefreshToken returns the signed token and the absolute expiry the
// ledger should record for it.
func (m *TokenManager) CreateRefreshToken(
	claims Claims,
) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.refreshTTL)

	token, err := m.builder(claims, tokenTypeRefresh, now).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build refresh token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.refreshSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return string(signed), expiresAt, nil
}

func (m *TokenManager) builder(
	claims Claims,
	tokenType string,
	now time.Time,
) *jwt.Builder {
	return jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.issuer).
		Audience([]string{m.audience}).
		Subject(claims.UserID).
		IssuedAt(now).
		Claim("email", claims.Email).
		Claim("role", claims.Role).
		Claim("type", tokenType)
}

func (m *TokenManager) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := m.parse(tokenString, m.accessSecret, tokenTypeAccess)
	if err != nil {
		return nil, err
	}

	return &middleware.AccessTokenClaims{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.TokenID,
	}, nil
}

func (m *TokenManager) VerifyRefreshToken(
	tokenString string,
) (*RefreshClaims, error) {
	return m.parse(tokenString, m.refreshSecret, tokenTypeRefresh)
}

func (m *TokenManager) parse(
	tokenString string,
	secret []byte,
	wantType string,
) (*RefreshClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil || tokenType != wantType {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var email, role string
	if err := token.Get("email", &email); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing email claim: %w",
			core.ErrTokenInvalid,
		)
	}
	if err := token.Get("role", &role); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	jti, _ := token.JwtID()
	exp, _ := token.Expiration()

	return &RefreshClaims{
		Claims: Claims{
			UserID: subject,
			Email:  email,
			Role:   role,
		},
		TokenID:   jti,
		ExpiresAt: exp,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
