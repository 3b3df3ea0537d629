package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("new or revived membership", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO channel_members").
			WithArgs(pgxmock.AnyArg(), "c1", "p1").
			WillReturnRows(mock.NewRows([]string{"oid"}).AddRow("m1"))

		joined, err := NewChannelRepository(mock).Connect(ctx, "c1", "p1")
		require.NoError(t, err)
		assert.True(t, joined)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already connected", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("ON CONFLICT").
			WithArgs(pgxmock.AnyArg(), "c1", "p1").
			WillReturnRows(mock.NewRows([]string{"oid"}))

		joined, err := NewChannelRepository(mock).Connect(ctx, "c1", "p1")
		require.NoError(t, err)
		assert.False(t, joined)
	})
}

func TestDisconnectWithoutMembership(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("UPDATE channel_members").
		WithArgs("c1", "p1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	left, err := NewChannelRepository(mock).Disconnect(context.Background(), "c1", "p1")
	require.NoError(t, err)
	assert.False(t, left)
}

func TestDeleteMissingChannel(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("SET is_deleted = TRUE").
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewChannelRepository(mock).Delete(context.Background(), "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetChannelByIDNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("JOIN channel_members m ON m.channel_id = c.oid AND m.profile_id").
		WithArgs("c1", "p1").
		WillReturnRows(mock.NewRows([]string{"oid", "name", "description", "avatar", "is_deleted", "created_at", "updated_at"}))

	_, err := NewChannelRepository(mock).GetByID(context.Background(), "c1", "p1", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChannelByIDLoadsMembers(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	desc := "chit chat"
	hash := "$2a$10$abcdefghijklmnopqrstuv"

	mock.ExpectQuery("FROM channels c").
		WithArgs("c1").
		WillReturnRows(mock.NewRows([]string{"oid", "name", "description", "avatar", "is_deleted", "created_at", "updated_at"}).
			AddRow("c1", "general", &desc, (*string)(nil), false, now, now))
	mock.ExpectQuery("FROM channel_members m").
		WithArgs([]string{"c1"}).
		WillReturnRows(mock.NewRows([]string{
			"channel_id", "oid", "display_name", "avatar", "created_at",
			"oid", "username", "email", "password", "created_at",
		}).
			AddRow("c1", "p1", "alice", "", now, "cr1", "alice", "alice@example.com", hash, now).
			AddRow("c1", "p2", "bobby", "", now, "cr2", "bobby", "bob@example.com", hash, now))

	ch, err := NewChannelRepository(mock).GetByID(context.Background(), "c1", "", false)
	require.NoError(t, err)
	assert.Equal(t, "general", ch.Name.String())
	assert.Equal(t, "chit chat", *ch.Description)
	assert.Nil(t, ch.Avatar)
	require.Len(t, ch.Members, 2)
	assert.Equal(t, "bob@example.com", ch.Members[1].Credentials.Email.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCountsWithSamePredicate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT count").
		WithArgs("p1").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery("LIMIT \\$2 OFFSET \\$3").
		WithArgs("p1", repository.DefaultChannelLimit, 20).
		WillReturnRows(mock.NewRows([]string{"oid", "name", "description", "avatar", "is_deleted", "created_at", "updated_at"}))

	items, total, err := NewChannelRepository(mock).List(context.Background(), repository.ChannelFilters{Offset: 20}, "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialsCreateConflict(t *testing.T) {
	mock := newMock(t)
	creds, err := entity.NewCredentials("alice", "alice@example.com", "a_valid_password")
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO credentials").
		WithArgs(creds.OID, "alice", "alice@example.com", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "credentials_email_key"})

	err = NewCredentialsRepository(mock).Create(context.Background(), creds)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestCredentialsExists(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice@example.com", "alice").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	found, err := NewCredentialsRepository(mock).Exists(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestProfileGetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("WHERE p.oid = \\$1").
		WithArgs("p1").
		WillReturnRows(mock.NewRows([]string{
			"oid", "display_name", "avatar", "created_at",
			"oid", "username", "email", "password", "created_at",
		}))

	_, err := NewProfileRepository(mock).GetByID(context.Background(), "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
