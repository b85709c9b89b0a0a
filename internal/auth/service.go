// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/kurakampus-api/internal/core"
)

type UserInfo struct {
	ID            string
	Email         string
	Username      string
	FirstName     string
	LastName      string
	PasswordHash  string
	Role          string
	Status        string
	EmailVerified bool
	CreatedAt     time.Time
}

type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
}

// UserProvider is the credential store as seen by the session manager.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, user NewUser) (*UserInfo, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type AuthResult struct {
	User   UserInfo
	Tokens TokenPair
}

type Service struct {
	repo   Repository
	tokens *TokenManager
	users  UserProvider
	hasher *core.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(
	repo Repository,
	tokens *TokenManager,
	users UserProvider,
	hasher *core.PasswordHasher,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		users:  users,
		hasher: hasher,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	client ClientInfo,
) (*AuthResult, error) {
	ctx, span := core.StartSpan(ctx, "auth.register")
	defer span.End()

	if !req.AgreeToTerms {
		return nil, ErrTermsNotAccepted
	}

	email := normalizeIdentifier(req.Email)
	username := normalizeIdentifier(req.Username)

	// Check-then-create races with concurrent registrations; the unique
	// constraints in the credential store catch what slips through.
	if err := s.ensureAbsent(ctx, s.users.GetByEmail, email, ErrDuplicateEmail); err != nil {
		return nil, err
	}
	if err := s.ensureAbsent(ctx, s.users.GetByUsername, username, ErrDuplicateUsername); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	})
	if err != nil {
		var dup *core.DuplicateKeyError
		if errors.As(err, &dup) {
			if dup.Field == "username" {
				return nil, ErrDuplicateUsername
			}
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issueTokens(ctx, s.repo, user, "", nil, client)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"family", pair.Family,
	)

	return &AuthResult{User: *user, Tokens: *pair}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	client ClientInfo,
) (*AuthResult, error) {
	ctx, span := core.StartSpan(ctx, "auth.login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeIdentifier(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.hasher.VerifyTimingSafe(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.VerifyTimingSafe(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash unreadable",
			"user_id", user.ID,
			"error", err,
		)
		return nil, ErrInvalidCredentials
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	pair, err := s.issueTokens(ctx, s.repo, user, "", nil, client)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: *user, Tokens: *pair}, nil
}

// Refresh rotates a refresh token. Presenting a token that is already
// revoked revokes its whole family before the error is returned.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	client ClientInfo,
) (*AuthResult, error) {
	ctx, span := core.StartSpan(ctx, "auth.refresh")
	defer span.End()

	if _, err := s.tokens.VerifyRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.repo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	core.SetSpanSession(ctx, stored.UserID, stored.Family)

	if stored.Revoked {
		return nil, s.handleReuse(ctx, stored, client)
	}

	if stored.IsExpiredAt(s.now()) {
		return nil, ErrExpiredRefreshToken
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var pair *TokenPair
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		revoked, revokeErr := tx.Revoke(ctx, stored.ID)
		if revokeErr != nil {
			return revokeErr
		}
		if !revoked {
			return errAlreadyRotated
		}

		var issueErr error
		pair, issueErr = s.issueTokens(ctx, tx, user, stored.Family, &stored.ID, client)
		return issueErr
	})
	if errors.Is(err, errAlreadyRotated) {
		return nil, s.handleReuse(ctx, stored, client)
	}
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return &AuthResult{User: *user, Tokens: *pair}, nil
}

// Logout is stateless: the HTTP layer clears the client's cookies and no
// ledger row is touched.
func (s *Service) Logout(ctx context.Context, client ClientInfo) error {
	s.logger.InfoContext(ctx, "client logged out",
		"ip_address", client.IPAddress,
	)
	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserInfo, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			Family:    t.Family,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) GetFamilyAudit(
	ctx context.Context,
	family string,
) ([]RefreshToken, error) {
	tokens, err := s.repo.ListByFamily(ctx, family)
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("get family: %w", core.ErrNotFound)
	}

	return tokens, nil
}

func (s *Service) handleReuse(
	ctx context.Context,
	stored *RefreshToken,
	client ClientInfo,
) error {
	revoked, err := s.repo.RevokeFamily(ctx, stored.Family)

	core.RecordReuseDetected(ctx, stored.Family, revoked)

	s.logger.WarnContext(ctx, "refresh token reuse detected, family revoked",
		"user_id", stored.UserID,
		"token_id", stored.ID,
		"family", stored.Family,
		"revoked", revoked,
		"ip_address", client.IPAddress,
		"user_agent", client.UserAgent,
	)

	if err != nil {
		core.SetSpanError(ctx, err)
		return fmt.Errorf("revoke token family: %w", err)
	}

	return ErrInvalidRefreshToken
}

func (s *Service) ensureAbsent(
	ctx context.Context,
	lookup func(context.Context, string) (*UserInfo, error),
	value string,
	conflict error,
) error {
	_, err := lookup(ctx, value)
	if err == nil {
		return conflict
	}
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("check existing user: %w", err)
}

// issueTokens mints an access/refresh pair and records the refresh token.
// An empty family starts a new one. When predecessorID is set the new row
// is written before the old row is linked to it.
func (s *Service) issueTokens(
	ctx context.Context,
	repo Repository,
	user *UserInfo,
	family string,
	predecessorID *string,
	client ClientInfo,
) (*TokenPair, error) {
	if family == "" {
		family = uuid.New().String()
	}

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	accessToken, err := s.tokens.CreateAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshToken, expiresAt, err := s.tokens.CreateRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	record := &RefreshToken{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		TokenHash:  core.HashToken(refreshToken),
		Family:     family,
		ExpiresAt:  expiresAt,
		ReplacesID: predecessorID,
		UserAgent:  client.UserAgent,
		IPAddress:  client.IPAddress,
	}

	if err := repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	core.SetSpanSession(ctx, user.ID, family)

	if predecessorID != nil {
		if err := repo.LinkReplacement(ctx, *predecessorID, record.ID); err != nil {
			return nil, fmt.Errorf("link refresh token: %w", err)
		}
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		Family:           family,
		RefreshTokenID:   record.ID,
		ExpiresIn:        s.tokens.AccessExpiresIn(),
		RefreshExpiresAt: expiresAt,
	}, nil
}

func normalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
