package repository

import (
	"context"

	"github.com/oksasatya/communet/internal/domain/entity"
)

// CredentialsRepository defines persistence for login identities.
type CredentialsRepository interface {
	Create(ctx context.Context, c *entity.Credentials) error
	// Exists reports whether any credentials use email or username.
	Exists(ctx context.Context, email, username string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*entity.Credentials, error)
	GetByEmail(ctx context.Context, email string) (*entity.Credentials, error)
}

// ProfileRepository defines persistence for profiles. Loaded profiles carry
// their credentials.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByCredentialsID(ctx context.Context, credentialsID string) (*entity.Profile, error)
}
