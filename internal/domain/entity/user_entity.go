package entity

import (
	"time"

	"github.com/oksasatya/communet/internal/domain/values"
)

// Credentials is the login identity of a profile. Password holds a bcrypt
// hash only.
type Credentials struct {
	Entity
	Username  values.Username
	Email     values.Email
	Password  values.Password
	CreatedAt time.Time
}

// NewCredentials validates the inputs and hashes password.
func NewCredentials(username, email, password string) (*Credentials, error) {
	u, err := values.NewUsername(username)
	if err != nil {
		return nil, err
	}
	e, err := values.NewEmail(email)
	if err != nil {
		return nil, err
	}
	p, err := values.NewPassword(password)
	if err != nil {
		return nil, err
	}
	return &Credentials{Entity: newEntity(), Username: u, Email: e, Password: p}, nil
}

// Profile is the public face of a user. It owns exactly one Credentials.
type Profile struct {
	Entity
	DisplayName values.Username
	Avatar      string
	Credentials *Credentials
	CreatedAt   time.Time
}

func NewProfile(displayName, avatar string, credentials *Credentials) (*Profile, error) {
	d, err := values.NewUsername(displayName)
	if err != nil {
		return nil, err
	}
	return &Profile{Entity: newEntity(), DisplayName: d, Avatar: avatar, Credentials: credentials}, nil
}

// AuthData is the token bundle handed out on login and refresh.
// It is never persisted.
type AuthData struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Duration
}
