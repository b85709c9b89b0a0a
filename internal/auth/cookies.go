// AngelaMos | 2026
// cookies.go

package auth

import (
	"net/http"
	"time"

	"github.com/carterperez-dev/kurakampus-api/internal/middleware"
)

const RefreshTokenCookie = "refreshToken"

// CookieWriter sets and clears the session cookies. Production cookies are
// Secure and SameSite=Strict; elsewhere Lax so a dev frontend on another
// port still sends them.
type CookieWriter struct {
	production bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCookieWriter(production bool, accessTTL, refreshTTL time.Duration) *CookieWriter {
	return &CookieWriter{
		production: production,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *CookieWriter) SetTokens(w http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, pair.AccessToken, c.accessTTL))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, pair.RefreshToken, c.refreshTTL))
}

func (c *CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		cookie := c.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

func (c *CookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.production {
		sameSite = http.SameSiteStrictMode
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.production,
		SameSite: sameSite,
	}
}
