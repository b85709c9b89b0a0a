// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one ledger row. Family is shared by every token
// descended from a single login or registration through rotation.
type RefreshToken struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	TokenHash  string     `db:"token_hash"`
	Family     string     `db:"family"`
	Revoked    bool       `db:"revoked"`
	RevokedAt  *time.Time `db:"revoked_at"`
	ReplacedBy *string    `db:"replaced_by"`
	ReplacesID *string    `db:"replaces_id"`
	ExpiresAt  time.Time  `db:"expires_at"`
	UserAgent  string     `db:"user_agent"`
	IPAddress  string     `db:"ip_address"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (t *RefreshToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsActiveAt(now time.Time) bool {
	return !t.Revoked && !t.IsExpiredAt(now)
}

type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	Family           string
	RefreshTokenID   string
	ExpiresIn        int
	RefreshExpiresAt time.Time
}
