package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/domain/repository"
)

// Transactor runs units of work on pgx transactions.
type Transactor struct {
	db     DB
	logger *logrus.Logger
}

func NewTransactor(db DB, logger *logrus.Logger) *Transactor {
	return &Transactor{db: db, logger: logger}
}

// Do commits when fn returns nil. It rolls back when fn returns an error,
// which is passed through unchanged, or panics, which is re-raised.
func (t *Transactor) Do(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			t.rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(ctx, &unitOfWork{q: tx}); err != nil {
		t.rollback(ctx, tx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (t *Transactor) rollback(ctx context.Context, tx pgx.Tx) {
	err := tx.Rollback(context.WithoutCancel(ctx))
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) && t.logger != nil {
		t.logger.WithError(err).Warn("rollback failed")
	}
}

type unitOfWork struct {
	q Querier
}

func (u *unitOfWork) Credentials() repository.CredentialsRepository {
	return &CredentialsRepository{q: u.q}
}

func (u *unitOfWork) Profiles() repository.ProfileRepository {
	return &ProfileRepository{q: u.q}
}

func (u *unitOfWork) Channels() repository.ChannelRepository {
	return &ChannelRepository{q: u.q}
}

var _ repository.Transactor = (*Transactor)(nil)
