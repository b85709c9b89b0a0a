// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Email                string `json:"email"                validate:"required,email,max=255"`
	Username             string `json:"username"             validate:"required,username"`
	Password             string `json:"password"             validate:"required,max=128,strongpassword"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
	FirstName            string `json:"firstName"            validate:"required,min=1,max=100"`
	LastName             string `json:"lastName"             validate:"required,min=1,max=100"`
	AgreeToTerms         bool   `json:"agreeToTerms"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	Family    string    `json:"family"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

type FamilyAuditEntry struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Revoked    bool       `json:"revoked"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	ReplacedBy *string    `json:"replacedBy,omitempty"`
	ReplacesID *string    `json:"replacesId,omitempty"`
	UserAgent  string     `json:"userAgent"`
	IPAddress  string     `json:"ipAddress"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

type FamilyAuditResponse struct {
	Family string             `json:"family"`
	Tokens []FamilyAuditEntry `json:"tokens"`
}

func ToUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func ToTokenResponse(p *TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    p.ExpiresIn,
	}
}

func ToFamilyAuditResponse(family string, tokens []RefreshToken) FamilyAuditResponse {
	entries := make([]FamilyAuditEntry, 0, len(tokens))
	for _, t := range tokens {
		entries = append(entries, FamilyAuditEntry{
			ID:         t.ID,
			UserID:     t.UserID,
			Revoked:    t.Revoked,
			RevokedAt:  t.RevokedAt,
			ReplacedBy: t.ReplacedBy,
			ReplacesID: t.ReplacesID,
			UserAgent:  t.UserAgent,
			IPAddress:  t.IPAddress,
			CreatedAt:  t.CreatedAt,
			ExpiresAt:  t.ExpiresAt,
		})
	}

	return FamilyAuditResponse{Family: family, Tokens: entries}
}
