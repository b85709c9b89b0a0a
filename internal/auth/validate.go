// AngelaMos | 2026
// validate.go

package auth

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

const passwordSpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// NewValidator returns a validator with the username and strongpassword
// rules registered. Outside production, strongpassword only enforces a
// four character minimum.
func NewValidator(production bool) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	//nolint:errcheck // tags are static and non-empty
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	//nolint:errcheck // tags are static and non-empty
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String(), production)
	})

	return v
}

func isStrongPassword(password string, production bool) bool {
	if !production {
		return len(password) >= 4
	}

	if len(password) < 8 {
		return false
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	special := strings.ContainsAny(password, passwordSpecialChars)

	return upper && lower && digit && special
}
