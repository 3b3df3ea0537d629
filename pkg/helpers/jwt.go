package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oksasatya/communet/internal/domain/entity"
)

var ErrMissingSubject = errors.New("token has no subject")

// JWTManager signs short-lived access tokens and mints opaque refresh
// tokens. Refresh tokens are not JWTs; their lifetime is enforced by the
// cache that stores them.
type JWTManager struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	now func() time.Time
}

func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		Secret:     []byte(secret),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type Claims struct {
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(profileID string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.AccessTTL)
	claims := &Claims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// GenerateRefreshToken returns a random opaque token.
func (m *JWTManager) GenerateRefreshToken() string {
	return uuid.NewString()
}

// Issue builds the token bundle handed to a client on login or refresh.
func (m *JWTManager) Issue(profileID string) (entity.AuthData, error) {
	access, exp, err := m.GenerateAccessToken(profileID)
	if err != nil {
		return entity.AuthData{}, err
	}
	return entity.AuthData{
		AccessToken:    access,
		AccessExpires:  exp,
		RefreshToken:   m.GenerateRefreshToken(),
		RefreshExpires: m.RefreshTTL,
	}, nil
}

// Decode verifies signature and expiry and returns the profile id.
func (m *JWTManager) Decode(tokenStr string) (string, error) {
	claims, err := m.ParseAccessToken(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.ProfileID == "" {
		return "", ErrMissingSubject
	}
	return claims.ProfileID, nil
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
