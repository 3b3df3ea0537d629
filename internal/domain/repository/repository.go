package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("conflict")
)

// UnitOfWork exposes repositories sharing one transaction.
type UnitOfWork interface {
	Credentials() CredentialsRepository
	Profiles() ProfileRepository
	Channels() ChannelRepository
}

// Transactor runs fn inside a transaction. It commits when fn returns nil
// and rolls back when fn fails or panics.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
