// AngelaMos | 2026
// handler_test.go

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kurakampus-api/internal/middleware"
)

type handlerFixture struct {
	*serviceFixture
	router *chi.Mux
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	sf := newServiceFixture(t)
	h := NewHandler(
		sf.svc,
		NewValidator(false),
		NewCookieWriter(false, sf.tokens.AccessTTL(), sf.tokens.RefreshTTL()),
	)

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Authenticator(sf.tokens), RouteLimits{})

	return &handlerFixture{serviceFixture: sf, router: r}
}

func (f *handlerFixture) do(
	t *testing.T,
	method, path string,
	body any,
	cookies ...*http.Cookie,
) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handler-test")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	rec, body := f.do(t, http.MethodPost, "/auth/register", aliceRegistration())
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Registration successful", body["message"])

	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	tokens := data["tokens"].(map[string]any)

	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")
	assert.Equal(t, "Bearer", tokens["tokenType"])
	assert.InDelta(t, 900, tokens["expiresIn"], 0)

	access := cookieByName(rec, "accessToken")
	refresh := cookieByName(rec, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	assert.Equal(t, tokens["accessToken"], access.Value)
	assert.Equal(t, tokens["refreshToken"], refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.False(t, refresh.Secure)
	assert.Equal(t, http.SameSiteLaxMode, refresh.SameSite)
	assert.Equal(t, "/", refresh.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
}

func TestRegisterEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*RegisterRequest)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "confirmation mismatch",
			mutate:     func(r *RegisterRequest) { r.PasswordConfirmation = "nope" },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "terms not accepted",
			mutate:     func(r *RegisterRequest) { r.AgreeToTerms = false },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "duplicate email",
			mutate:     func(r *RegisterRequest) { r.Username = "alice2" },
			wantStatus: http.StatusConflict,
			wantCode:   "EMAIL_EXISTS",
		},
		{
			name:       "duplicate username",
			mutate:     func(r *RegisterRequest) { r.Email = "alice2@example.com" },
			wantStatus: http.StatusConflict,
			wantCode:   "USERNAME_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			f.register(t)

			req := aliceRegistration()
			tt.mutate(&req)

			rec, body := f.do(t, http.MethodPost, "/auth/register", req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(body))
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	f := newHandlerFixture(t)

	req := aliceRegistration()
	req.PasswordConfirmation = "mismatch"

	_, body := f.do(t, http.MethodPost, "/auth/register", req)

	details := body["error"].(map[string]any)["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "passwordConfirmation", details[0].(map[string]any)["field"])
}

func TestLoginEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)

	rec, body := f.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: "S3cure!pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotNil(t, cookieByName(rec, "refreshToken"))

	unknownRec, unknownBody := f.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "S3cure!pass",
	})
	wrongRec, wrongBody := f.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(unknownBody))
	assert.Equal(t, unknownRec.Body.String(), wrongRec.Body.String())
	assert.Equal(t, unknownBody, wrongBody)
}

func TestRefreshEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	reg := f.register(t)

	rec, body := f.do(t, http.MethodPost, "/auth/refresh", nil, &http.Cookie{
		Name:  "refreshToken",
		Value: reg.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Tokens refreshed", body["message"])
	assert.NotContains(t, body, "data")

	rotated := cookieByName(rec, "refreshToken")
	require.NotNil(t, rotated)
	assert.NotEqual(t, reg.Tokens.RefreshToken, rotated.Value)
	assert.NotNil(t, cookieByName(rec, "accessToken"))

	replayRec, replayBody := f.do(t, http.MethodPost, "/auth/refresh", nil, &http.Cookie{
		Name:  "refreshToken",
		Value: reg.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, replayRec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(replayBody))

	nextRec, _ := f.do(t, http.MethodPost, "/auth/refresh", nil, rotated)
	assert.Equal(t, http.StatusUnauthorized, nextRec.Code)
}

func TestRefreshEndpointWithoutCookie(t *testing.T) {
	f := newHandlerFixture(t)

	rec, body := f.do(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": "ignored-body-token",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(body))
}

func TestRefreshEndpointExpired(t *testing.T) {
	f := newHandlerFixture(t)
	reg := f.register(t)
	f.now = f.now.Add(30 * 24 * time.Hour)

	rec, body := f.do(t, http.MethodPost, "/auth/refresh", nil, &http.Cookie{
		Name:  "refreshToken",
		Value: reg.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "REFRESH_TOKEN_EXPIRED", errorCode(body))
}

func TestLogoutClearsCookies(t *testing.T) {
	f := newHandlerFixture(t)
	reg := f.register(t)

	rec, body := f.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", body["message"])

	for _, name := range []string{"accessToken", "refreshToken"} {
		c := cookieByName(rec, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}

	assert.False(t, f.ledger.get(t, reg.Tokens.RefreshTokenID).Revoked)
}

func TestMeEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	reg := f.register(t)

	rec, _ := f.do(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/auth/me", nil, &http.Cookie{
		Name:  "accessToken",
		Value: reg.Tokens.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", body["data"].(map[string]any)["username"])
}

func TestSessionsEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	reg := f.register(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SessionsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Sessions, 1)
	assert.Equal(t, reg.Tokens.Family, body.Data.Sessions[0].Family)
}

func TestProductionCookies(t *testing.T) {
	cw := NewCookieWriter(true, 15*time.Minute, 7*24*time.Hour)
	rec := httptest.NewRecorder()

	cw.SetTokens(rec, &TokenPair{AccessToken: "a", RefreshToken: "r"})

	for _, c := range rec.Result().Cookies() {
		assert.True(t, c.Secure, c.Name)
		assert.True(t, c.HttpOnly, c.Name)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite, c.Name)
	}
}
