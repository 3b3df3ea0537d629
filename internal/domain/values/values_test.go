package values_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/communet/internal/domain/values"
)

func TestNewUsername(t *testing.T) {
	for _, s := range []string{"abc", "john_doe", strings.Repeat("x", 32), "Влад"} {
		u, err := values.NewUsername(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, u.String())
	}

	cases := []struct {
		in    string
		kind  error
		limit int
	}{
		{"", values.ErrEmpty, 0},
		{"ab", values.ErrTooShort, 3},
		{strings.Repeat("x", 33), values.ErrTooLong, 32},
	}
	for _, tc := range cases {
		_, err := values.NewUsername(tc.in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tc.kind), "%q: got %v", tc.in, err)

		var verr *values.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, tc.limit, verr.Limit)
	}
}

func TestNewChannelName(t *testing.T) {
	c, err := values.NewChannelName("general")
	require.NoError(t, err)
	assert.Equal(t, "general", c.String())

	_, err = values.NewChannelName("")
	assert.ErrorIs(t, err, values.ErrEmpty)
	_, err = values.NewChannelName("go")
	assert.ErrorIs(t, err, values.ErrTooShort)
	_, err = values.NewChannelName(strings.Repeat("c", 40))
	assert.ErrorIs(t, err, values.ErrTooLong)
	assert.EqualError(t, err, "channel name should be less than or equal to 32")
}

func TestNewEmail(t *testing.T) {
	for _, s := range []string{"ankitrai326@gmail.com", "my.ownsite@our-earth.org", "ankitrai326@gmail.co.in"} {
		e, err := values.NewEmail(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, e.String())
	}

	_, err := values.NewEmail("ankitrai326.com")
	assert.ErrorIs(t, err, values.ErrInvalidFormat)

	_, err = values.NewEmail("")
	assert.ErrorIs(t, err, values.ErrEmpty)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, values.IsEmail("user@example.com"))
	assert.False(t, values.IsEmail("user"))
	assert.False(t, values.IsEmail(""))
}

func TestNewPassword(t *testing.T) {
	_, err := values.NewPassword("short123")
	assert.ErrorIs(t, err, values.ErrTooShort)

	_, err = values.NewPassword("")
	assert.ErrorIs(t, err, values.ErrEmpty)

	p, err := values.NewPassword("a_valid_password")
	require.NoError(t, err)
	assert.NotEqual(t, "a_valid_password", p.String())
	assert.True(t, values.CheckPasswords("a_valid_password", p.String()))
	assert.False(t, values.CheckPasswords("wrong", p.String()))
	assert.True(t, values.PasswordFromHash(p.String()).Matches("a_valid_password"))
}

func TestNewPasswordCountsRunes(t *testing.T) {
	_, err := values.NewPassword("пароль12")
	assert.ErrorIs(t, err, values.ErrTooShort)

	_, err = values.NewPassword("пароль123")
	assert.NoError(t, err)
}

func TestNewPasswordRejectsInputBcryptCannotHash(t *testing.T) {
	_, err := values.NewPassword(strings.Repeat("a", 73))
	var verr *values.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	assert.ErrorIs(t, err, values.ErrTooLong)
	assert.Equal(t, 72, verr.Limit)

	// 36 two-byte runes hit the byte limit exactly
	_, err = values.NewPassword(strings.Repeat("я", 36))
	assert.NoError(t, err)
	_, err = values.NewPassword(strings.Repeat("я", 37))
	assert.ErrorIs(t, err, values.ErrTooLong)

	_, err = values.NewPassword(strings.Repeat("a", 72))
	assert.NoError(t, err)
}

func TestNewPasswordSaltsEachHash(t *testing.T) {
	a, err := values.NewPassword("a_valid_password")
	require.NoError(t, err)
	b, err := values.NewPassword("a_valid_password")
	require.NoError(t, err)
	assert.NotEqual(t, a.String(), b.String())
}
