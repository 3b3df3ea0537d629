package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
	"github.com/oksasatya/communet/internal/domain/values"
)

type CredentialsRepository struct {
	q Querier
}

func NewCredentialsRepository(q Querier) *CredentialsRepository {
	return &CredentialsRepository{q: q}
}

func (r *CredentialsRepository) Create(ctx context.Context, c *entity.Credentials) error {
	row := r.q.QueryRow(ctx, `
		INSERT INTO credentials (oid, username, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.OID, c.Username.String(), c.Email.String(), c.Password.String())

	return mapErr(row.Scan(&c.CreatedAt))
}

func (r *CredentialsRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM credentials WHERE email = $1 OR username = $2)
	`, email, username).Scan(&exists)
	return exists, err
}

const credentialsColumns = `oid, username, email, password, created_at`

func (r *CredentialsRepository) GetByUsername(ctx context.Context, username string) (*entity.Credentials, error) {
	return scanCredentials(r.q.QueryRow(ctx, `
		SELECT `+credentialsColumns+`
		FROM credentials
		WHERE username = $1
	`, username))
}

func (r *CredentialsRepository) GetByEmail(ctx context.Context, email string) (*entity.Credentials, error) {
	return scanCredentials(r.q.QueryRow(ctx, `
		SELECT `+credentialsColumns+`
		FROM credentials
		WHERE email = $1
	`, email))
}

func scanCredentials(row pgx.Row) (*entity.Credentials, error) {
	var (
		c                     entity.Credentials
		username, email, hash string
	)
	if err := row.Scan(&c.OID, &username, &email, &hash, &c.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := restoreCredentials(&c, username, email, hash); err != nil {
		return nil, err
	}
	return &c, nil
}

func restoreCredentials(c *entity.Credentials, username, email, hash string) error {
	u, err := values.NewUsername(username)
	if err != nil {
		return fmt.Errorf("credentials %s: %w", c.OID, err)
	}
	e, err := values.NewEmail(email)
	if err != nil {
		return fmt.Errorf("credentials %s: %w", c.OID, err)
	}
	c.Username, c.Email, c.Password = u, e, values.PasswordFromHash(hash)
	return nil
}

type ProfileRepository struct {
	q Querier
}

func NewProfileRepository(q Querier) *ProfileRepository {
	return &ProfileRepository{q: q}
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	if p.Credentials == nil {
		return fmt.Errorf("profile %s has no credentials", p.OID)
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO profiles (oid, display_name, avatar, credentials_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, p.OID, p.DisplayName.String(), p.Avatar, p.Credentials.OID)

	return mapErr(row.Scan(&p.CreatedAt))
}

const profileSelect = `
	SELECT p.oid, p.display_name, p.avatar, p.created_at,
	       c.oid, c.username, c.email, c.password, c.created_at
	FROM profiles p
	JOIN credentials c ON c.oid = p.credentials_id
`

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return scanProfile(r.q.QueryRow(ctx, profileSelect+`WHERE p.oid = $1`, id))
}

func (r *ProfileRepository) GetByCredentialsID(ctx context.Context, credentialsID string) (*entity.Profile, error) {
	return scanProfile(r.q.QueryRow(ctx, profileSelect+`WHERE p.credentials_id = $1`, credentialsID))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*entity.Profile, error) {
	var (
		p                     entity.Profile
		c                     entity.Credentials
		displayName           string
		username, email, hash string
	)
	err := row.Scan(&p.OID, &displayName, &p.Avatar, &p.CreatedAt,
		&c.OID, &username, &email, &hash, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	d, err := values.NewUsername(displayName)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.OID, err)
	}
	if err := restoreCredentials(&c, username, email, hash); err != nil {
		return nil, err
	}
	p.DisplayName = d
	p.Credentials = &c
	return &p, nil
}

var (
	_ repository.CredentialsRepository = (*CredentialsRepository)(nil)
	_ repository.ProfileRepository     = (*ProfileRepository)(nil)
)
