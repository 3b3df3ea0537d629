package container

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/apptest"
	"github.com/oksasatya/communet/internal/application/command"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/application/query"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/event"
	"github.com/oksasatya/communet/pkg/helpers"
)

func testDeps() Deps {
	return Deps{
		Tx:     apptest.NewStore(),
		Cache:  apptest.NewCache(),
		Tokens: helpers.NewJWTManager("secret", time.Minute, time.Hour),
		Index:  &apptest.Index{},
	}
}

func TestEveryCommandAndQueryIsRegistered(t *testing.T) {
	m := NewMediator(testDeps())

	commands := []any{
		command.RegisterCommand{},
		command.LoginCommand{},
		command.RefreshTokensCommand{},
		command.RevokeRefreshTokenCommand{},
		command.ExtractProfileCommand{},
		command.CreateChannelCommand{},
		command.UpdateChannelCommand{},
		command.DeleteChannelCommand{},
		command.ConnectToChannelCommand{},
		command.DisconnectFromChannelCommand{},
		command.UploadChannelAvatarCommand{},
	}
	for _, c := range commands {
		assert.True(t, m.HasCommand(c), "%T", c)
	}

	queries := []any{
		query.GetAllChannelsQuery{},
		query.GetChannelByIDQuery{},
		query.GetChannelMembersQuery{},
		query.SearchChannelsQuery{},
	}
	for _, q := range queries {
		assert.True(t, m.HasQuery(q), "%T", q)
	}
}

func TestWiredFlow(t *testing.T) {
	ctx := context.Background()
	deps := testDeps()
	index := deps.Index.(*apptest.Index)
	m := NewMediator(deps)

	profile, err := mediator.Send[*entity.Profile](ctx, m, command.RegisterCommand{
		DisplayName: "alice",
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "a_valid_password",
	})
	require.NoError(t, err)

	auth, err := mediator.Send[entity.AuthData](ctx, m, command.NewLoginCommand("alice@example.com", "a_valid_password"))
	require.NoError(t, err)

	me, err := mediator.Send[*entity.Profile](ctx, m, command.ExtractProfileCommand{Token: auth.AccessToken})
	require.NoError(t, err)
	assert.True(t, me.Equal(profile.Entity))

	ch, err := mediator.Send[*entity.Channel](ctx, m, command.CreateChannelCommand{Name: "general", Author: me})
	require.NoError(t, err)
	assert.Equal(t, "general", index.Docs[ch.OID].Name)

	page, err := mediator.Ask[query.ChannelPage](ctx, m, query.GetAllChannelsQuery{ProfileID: me.OID})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
}

type downForwarder struct{ attempts int }

func (f *downForwarder) Forward(context.Context, event.Event) error {
	f.attempts++
	return errors.New("broker unreachable")
}

func TestIndexFollowsChannelsWhileBrokerIsDown(t *testing.T) {
	ctx := context.Background()
	deps := testDeps()
	broker := &downForwarder{}
	deps.Forwarder = broker
	m := NewMediator(deps)

	author, err := mediator.Send[*entity.Profile](ctx, m, command.RegisterCommand{
		DisplayName: "alice",
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "a_valid_password",
	})
	require.NoError(t, err)

	ch, err := mediator.Send[*entity.Channel](ctx, m, command.CreateChannelCommand{Name: "general", Author: author})
	require.NoError(t, err)

	hits, err := mediator.Ask[[]application.ChannelDocument](ctx, m, query.SearchChannelsQuery{Query: "general"})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	_, err = mediator.Send[struct{}](ctx, m, command.DeleteChannelCommand{ChannelID: ch.OID, ProfileID: author.OID})
	require.NoError(t, err)

	hits, err = mediator.Ask[[]application.ChannelDocument](ctx, m, query.SearchChannelsQuery{Query: "general"})
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 3, broker.attempts)
}
