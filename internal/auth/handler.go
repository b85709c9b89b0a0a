// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/kurakampus-api/internal/core"
	"github.com/carterperez-dev/kurakampus-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
	cookies   *CookieWriter
}

func NewHandler(
	service *Service,
	validate *validator.Validate,
	cookies *CookieWriter,
) *Handler {
	return &Handler{
		service:   service,
		validator: validate,
		cookies:   cookies,
	}
}

// RouteLimits holds the per-endpoint rate limit middleware for the public
// auth routes. A nil entry leaves that route unlimited.
type RouteLimits struct {
	Register func(http.Handler) http.Handler
	Login    func(http.Handler) http.Handler
	Refresh  func(http.Handler) http.Handler
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limits RouteLimits,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(optional(limits.Register)...).Post("/register", h.Register)
		r.With(optional(limits.Login)...).Post("/login", h.Login)
		r.With(optional(limits.Refresh)...).Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Get("/sessions", h.GetSessions)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Register(r.Context(), req, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.cookies.SetTokens(w, &result.Tokens)

	core.MessageWithData(w, http.StatusCreated, "Registration successful", AuthResponse{
		User:   ToUserResponse(&result.User),
		Tokens: ToTokenResponse(&result.Tokens),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.cookies.SetTokens(w, &result.Tokens)

	core.MessageWithData(w, http.StatusOK, "Login successful", AuthResponse{
		User:   ToUserResponse(&result.User),
		Tokens: ToTokenResponse(&result.Tokens),
	})
}

// Refresh reads the refresh token from its cookie only. New tokens are
// delivered as cookies and never in the body.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeServiceError(w, ErrInvalidRefreshToken)
		return
	}

	result, err := h.service.Refresh(r.Context(), cookie.Value, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.cookies.SetTokens(w, &result.Tokens)

	core.Message(w, http.StatusOK, "Tokens refreshed")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), clientInfo(r)); err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.cookies.Clear(w)

	core.Message(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	sessions, err := h.service.GetActiveSessions(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SessionsResponse{Sessions: sessions})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.JSONError(w, core.ValidationError("invalid request body", nil))
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.ValidationFailed(w, err)
		return false
	}

	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTermsNotAccepted):
		core.JSONError(w, core.ValidationError(
			"you must agree to the terms and conditions",
			[]core.FieldError{{Field: "agreeToTerms", Message: "must be accepted"}},
		))
	case errors.Is(err, ErrValidation):
		core.JSONError(w, core.ValidationError(err.Error(), nil))
	case errors.Is(err, ErrDuplicateEmail):
		core.JSONError(w, core.NewAppError(
			err, "email already registered", http.StatusConflict, "EMAIL_EXISTS",
		))
	case errors.Is(err, ErrDuplicateUsername):
		core.JSONError(w, core.NewAppError(
			err, "username already taken", http.StatusConflict, "USERNAME_EXISTS",
		))
	case errors.Is(err, ErrInvalidCredentials):
		core.JSONError(w, core.NewAppError(
			err, "invalid email or password", http.StatusUnauthorized, "INVALID_CREDENTIALS",
		))
	case errors.Is(err, ErrInvalidRefreshToken):
		core.JSONError(w, core.NewAppError(
			err, "invalid refresh token", http.StatusUnauthorized, "INVALID_REFRESH_TOKEN",
		))
	case errors.Is(err, ErrExpiredRefreshToken):
		core.JSONError(w, core.NewAppError(
			err, "refresh token expired", http.StatusUnauthorized, "REFRESH_TOKEN_EXPIRED",
		))
	default:
		core.InternalServerError(w, err)
	}
}

func clientInfo(r *http.Request) ClientInfo {
	return ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: middleware.ClientIP(r),
	}
}

func optional(mw func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	if mw == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{mw}
}
