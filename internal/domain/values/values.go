package values

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	nameMinLen       = 3
	nameMaxLen       = 32
	passwordMinLen   = 8
	passwordMaxBytes = 72 // bcrypt input limit
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func emailValidator() *validator.Validate {
	validateOnce.Do(func() { validate = validator.New() })
	return validate
}

// IsEmail reports whether s looks like an e-mail address. Login uses it to
// decide whether an identifier is an e-mail or a username.
func IsEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return emailValidator().Var(s, "email") == nil
}

func checkLength(field, s string) error {
	if s == "" {
		return invalid(field, ErrEmpty, 0)
	}
	n := utf8.RuneCountInString(s)
	if n < nameMinLen {
		return invalid(field, ErrTooShort, nameMinLen)
	}
	if n > nameMaxLen {
		return invalid(field, ErrTooLong, nameMaxLen)
	}
	return nil
}

// Username is a validated login name, also used for display names.
type Username struct{ value string }

func NewUsername(s string) (Username, error) {
	if err := checkLength("username", s); err != nil {
		return Username{}, err
	}
	return Username{value: s}, nil
}

func (u Username) String() string { return u.value }

// Email is a validated e-mail address.
type Email struct{ value string }

func NewEmail(s string) (Email, error) {
	if s == "" {
		return Email{}, invalid("email", ErrEmpty, 0)
	}
	if !IsEmail(s) {
		return Email{}, invalid("email", ErrInvalidFormat, 0)
	}
	return Email{value: s}, nil
}

func (e Email) String() string { return e.value }

// ChannelName is a validated channel title.
type ChannelName struct{ value string }

func NewChannelName(s string) (ChannelName, error) {
	if err := checkLength("channel name", s); err != nil {
		return ChannelName{}, err
	}
	return ChannelName{value: s}, nil
}

func (c ChannelName) String() string { return c.value }
