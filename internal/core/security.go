// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const dummyPassword = "dummy_password_for_timing_attack_prevention"

type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

type PasswordHasher struct {
	params    Argon2Params
	dummyHash string
}

func NewPasswordHasher(params Argon2Params) (*PasswordHasher, error) {
	if params.Memory == 0 || params.Time == 0 || params.Threads == 0 {
		return nil, fmt.Errorf("argon2 params must be positive: %w", ErrInvalidInput)
	}
	if params.KeyLen == 0 {
		params.KeyLen = DefaultArgon2Params.KeyLen
	}
	if params.SaltLen == 0 {
		params.SaltLen = DefaultArgon2Params.SaltLen
	}

	h := &PasswordHasher{params: params}

	dummy, err := h.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	h.dummyHash = dummy

	return h, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		h.params.KeyLen,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey(
		[]byte(password),
		salt,
		params.Time,
		params.Memory,
		params.Threads,
		params.KeyLen,
	)

	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

// VerifyTimingSafe always runs one argon2 derivation, against the dummy
// hash when encodedHash is empty, so unknown accounts cost the same as
// wrong passwords. newHash is non-empty when the stored hash should be
// upgraded to the current parameters.
func (h *PasswordHasher) VerifyTimingSafe(
	password, encodedHash string,
) (valid bool, newHash string, err error) {
	if encodedHash == "" {
		//nolint:errcheck // result discarded on purpose
		_, _ = h.Verify(password, h.dummyHash)
		return false, "", nil
	}

	valid, err = h.Verify(password, encodedHash)
	if err != nil || !valid {
		return false, "", err
	}

	if h.NeedsRehash(encodedHash) {
		rehashed, hashErr := h.Hash(password)
		if hashErr != nil {
			//nolint:nilerr // password verified; rehash failure is non-critical
			return true, "", nil
		}
		return true, rehashed, nil
	}

	return true, "", nil
}

func (h *PasswordHasher) NeedsRehash(encodedHash string) bool {
	params, _, _, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}

	return params.Memory != h.params.Memory ||
		params.Time != h.params.Time ||
		params.Threads != h.params.Threads ||
		params.KeyLen != h.params.KeyLen
}

func decodeHash(encodedHash string) (*Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, nil, nil, errors.New("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params := &Argon2Params{}
	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.Memory,
		&params.Time,
		&params.Threads,
	); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: argon2 key length is always small
	params.KeyLen = uint32(len(key))
	//nolint:gosec // G115: salt length is always small
	params.SaltLen = uint32(len(salt))

	return params, salt, key, nil
}

// HashToken returns the hex SHA-256 digest used as the lookup key for
// persisted refresh tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
