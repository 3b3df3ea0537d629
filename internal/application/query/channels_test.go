package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/apptest"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
)

func seedProfile(t *testing.T, store *apptest.Store, name string) *entity.Profile {
	t.Helper()
	creds, err := entity.NewCredentials(name, name+"@example.com", "a_valid_password")
	require.NoError(t, err)
	p, err := entity.NewProfile(name, "", creds)
	require.NoError(t, err)
	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Credentials().Create(ctx, creds); err != nil {
			return err
		}
		return uow.Profiles().Create(ctx, p)
	}))
	return p
}

func seedChannel(t *testing.T, store *apptest.Store, name string, author *entity.Profile) *entity.Channel {
	t.Helper()
	ch, err := entity.NewChannel(name, nil, nil, author)
	require.NoError(t, err)
	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Channels().Create(ctx, author, ch)
	}))
	return ch
}

func TestGetAllChannelsPaginates(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	alice := seedProfile(t, store, "alice")
	bob := seedProfile(t, store, "bob")
	for i := 0; i < 5; i++ {
		seedChannel(t, store, fmt.Sprintf("alice-%d", i), alice)
	}
	seedChannel(t, store, "bobs-room", bob)

	h := NewGetAllChannelsHandler(store)
	page, err := h.Handle(ctx, GetAllChannelsQuery{
		Filters:   repository.ChannelFilters{Limit: 2, Offset: 4},
		ProfileID: alice.OID,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Count)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice-4", page.Items[0].Name.String())

	page, err = h.Handle(ctx, GetAllChannelsQuery{ProfileID: bob.OID})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, repository.DefaultChannelLimit, page.Limit)

	page, err = h.Handle(ctx, GetAllChannelsQuery{ProfileID: "stranger"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestGetChannelByID(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	alice := seedProfile(t, store, "alice")
	bob := seedProfile(t, store, "bob")
	ch := seedChannel(t, store, "general", alice)
	h := NewGetChannelByIDHandler(store)

	got, err := h.Handle(ctx, GetChannelByIDQuery{ChannelID: ch.OID, ProfileID: alice.OID, CheckMember: true})
	require.NoError(t, err)
	assert.True(t, got.Equal(ch.Entity))
	require.Len(t, got.Members, 1)

	_, err = h.Handle(ctx, GetChannelByIDQuery{ChannelID: ch.OID, ProfileID: bob.OID, CheckMember: true})
	var missing *application.ChannelDoesNotExistError
	assert.ErrorAs(t, err, &missing)

	_, err = h.Handle(ctx, GetChannelByIDQuery{ChannelID: ch.OID, ProfileID: bob.OID})
	assert.NoError(t, err)
}

func TestDeletedChannelIsGone(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	alice := seedProfile(t, store, "alice")
	ch := seedChannel(t, store, "general", alice)
	require.NoError(t, store.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Channels().Delete(ctx, ch.OID)
	}))

	_, err := NewGetChannelByIDHandler(store).Handle(ctx, GetChannelByIDQuery{ChannelID: ch.OID, ProfileID: alice.OID})
	var missing *application.ChannelDoesNotExistError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ch.OID, missing.ChannelID)

	_, err = NewGetChannelMembersHandler(store).Handle(ctx, GetChannelMembersQuery{ChannelID: ch.OID})
	assert.ErrorAs(t, err, &missing)

	page, err := NewGetAllChannelsHandler(store).Handle(ctx, GetAllChannelsQuery{ProfileID: alice.OID})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
}

func TestGetChannelMembers(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	alice := seedProfile(t, store, "alice")
	bob := seedProfile(t, store, "bob")
	ch := seedChannel(t, store, "general", alice)
	require.NoError(t, store.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		_, err := uow.Channels().Connect(ctx, ch.OID, bob.OID)
		return err
	}))

	members, err := NewGetChannelMembersHandler(store).Handle(ctx, GetChannelMembersQuery{ChannelID: ch.OID})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].DisplayName.String())
	assert.Equal(t, "bob", members[1].DisplayName.String())
}

func TestSearchChannels(t *testing.T) {
	ctx := context.Background()
	index := &apptest.Index{}
	require.NoError(t, index.Index(ctx, application.ChannelDocument{ID: "1", Name: "golang"}))
	require.NoError(t, index.Index(ctx, application.ChannelDocument{ID: "2", Name: "rust"}))

	docs, err := NewSearchChannelsHandler(index).Handle(ctx, SearchChannelsQuery{Query: "go"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "1", docs[0].ID)

	docs, err = NewSearchChannelsHandler(index).Handle(ctx, SearchChannelsQuery{Query: "python"})
	require.NoError(t, err)
	assert.NotNil(t, docs)

	_, err = NewSearchChannelsHandler(nil).Handle(ctx, SearchChannelsQuery{Query: "go"})
	assert.ErrorIs(t, err, application.ErrSearchDisabled)
}
