package values

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Password holds a bcrypt hash. The plaintext is never kept after
// construction.
type Password struct{ hash string }

// NewPassword validates plain and hashes it with a random salt.
// Passwords must be longer than 8 characters and fit bcrypt's 72-byte
// input limit.
func NewPassword(plain string) (Password, error) {
	if plain == "" {
		return Password{}, invalid("password", ErrEmpty, 0)
	}
	if utf8.RuneCountInString(plain) <= passwordMinLen {
		return Password{}, invalid("password", ErrTooShort, passwordMinLen)
	}
	if len(plain) > passwordMaxBytes {
		return Password{}, invalid("password", ErrTooLong, passwordMaxBytes)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return Password{}, fmt.Errorf("hash password: %w", err)
	}
	return Password{hash: string(b)}, nil
}

// PasswordFromHash wraps a hash loaded from storage.
func PasswordFromHash(hash string) Password { return Password{hash: hash} }

// String returns the hash.
func (p Password) String() string { return p.hash }

// Matches reports whether plain hashes to p.
func (p Password) Matches(plain string) bool { return CheckPasswords(plain, p.hash) }

// CheckPasswords compares a plaintext candidate with a stored bcrypt hash.
func CheckPasswords(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
