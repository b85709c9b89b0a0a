// AngelaMos | 2026
// errors.go

package auth

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateUsername   = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token expired")

	ErrTermsNotAccepted = fmt.Errorf(
		"you must agree to the terms and conditions: %w",
		ErrValidation,
	)

	// errAlreadyRotated signals that a concurrent request revoked the
	// presented token between lookup and rotation.
	errAlreadyRotated = errors.New("refresh token already rotated")
)
