// AngelaMos | 2026
// validate_test.go

package auth

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password   string
		production bool
		want       bool
	}{
		{password: "abcd", production: false, want: true},
		{password: "abc", production: false, want: false},
		{password: "abcd", production: true, want: false},
		{password: "S3cure!pass", production: true, want: true},
		{password: "s3cure!pass", production: true, want: false},
		{password: "S3CURE!PASS", production: true, want: false},
		{password: "Secure!pass", production: true, want: false},
		{password: "S3curepass", production: true, want: false},
		{password: "S3c!ure", production: true, want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isStrongPassword(tt.password, tt.production),
			"password %q production=%v", tt.password, tt.production)
	}
}

func TestRegisterRequestValidation(t *testing.T) {
	v := NewValidator(false)

	valid := aliceRegistration()
	require.NoError(t, v.Struct(valid))

	tests := map[string]struct {
		mutate func(*RegisterRequest)
		field  string
	}{
		"bad email": {
			mutate: func(r *RegisterRequest) { r.Email = "not-an-email" },
			field:  "email",
		},
		"short username": {
			mutate: func(r *RegisterRequest) { r.Username = "al" },
			field:  "username",
		},
		"username with dash": {
			mutate: func(r *RegisterRequest) { r.Username = "alice-l" },
			field:  "username",
		},
		"confirmation mismatch": {
			mutate: func(r *RegisterRequest) { r.PasswordConfirmation = "different" },
			field:  "passwordConfirmation",
		},
		"missing first name": {
			mutate: func(r *RegisterRequest) { r.FirstName = "" },
			field:  "firstName",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := aliceRegistration()
			tt.mutate(&req)

			err := v.Struct(req)
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestProductionValidatorEnforcesStrongPassword(t *testing.T) {
	req := aliceRegistration()
	req.Password = "weakpass"
	req.PasswordConfirmation = "weakpass"

	assert.NoError(t, NewValidator(false).Struct(req))
	assert.Error(t, NewValidator(true).Struct(req))
}
