package query

import (
	"context"
	"errors"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
)

func channelNotFound(err error, channelID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &application.ChannelDoesNotExistError{ChannelID: channelID}
	}
	return err
}

// GetAllChannelsQuery lists the channels ProfileID is connected to.
type GetAllChannelsQuery struct {
	Filters   repository.ChannelFilters
	ProfileID string
}

// ChannelPage is one page of a channel listing. Count is the total across
// all pages.
type ChannelPage struct {
	Items  []*entity.Channel
	Count  int
	Limit  int
	Offset int
}

type GetAllChannelsHandler struct {
	Tx repository.Transactor
}

func NewGetAllChannelsHandler(tx repository.Transactor) *GetAllChannelsHandler {
	return &GetAllChannelsHandler{Tx: tx}
}

func (h *GetAllChannelsHandler) Handle(ctx context.Context, q GetAllChannelsQuery) (ChannelPage, error) {
	filters := q.Filters.Normalize()
	page := ChannelPage{Limit: filters.Limit, Offset: filters.Offset}
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		items, count, err := uow.Channels().List(ctx, filters, q.ProfileID)
		if err != nil {
			return err
		}
		page.Items, page.Count = items, count
		return nil
	})
	if err != nil {
		return ChannelPage{}, err
	}
	if page.Items == nil {
		page.Items = []*entity.Channel{}
	}
	return page, nil
}

// GetChannelByIDQuery loads a live channel. With CheckMember set, ProfileID
// must be a member.
type GetChannelByIDQuery struct {
	ChannelID   string
	ProfileID   string
	CheckMember bool
}

type GetChannelByIDHandler struct {
	Tx repository.Transactor
}

func NewGetChannelByIDHandler(tx repository.Transactor) *GetChannelByIDHandler {
	return &GetChannelByIDHandler{Tx: tx}
}

func (h *GetChannelByIDHandler) Handle(ctx context.Context, q GetChannelByIDQuery) (*entity.Channel, error) {
	var ch *entity.Channel
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		found, err := uow.Channels().GetByID(ctx, q.ChannelID, q.ProfileID, q.CheckMember)
		if err != nil {
			return channelNotFound(err, q.ChannelID)
		}
		ch = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// GetChannelMembersQuery returns the connected members of a live channel.
type GetChannelMembersQuery struct {
	ChannelID string
	ProfileID string
}

type GetChannelMembersHandler struct {
	Tx repository.Transactor
}

func NewGetChannelMembersHandler(tx repository.Transactor) *GetChannelMembersHandler {
	return &GetChannelMembersHandler{Tx: tx}
}

func (h *GetChannelMembersHandler) Handle(ctx context.Context, q GetChannelMembersQuery) ([]*entity.Profile, error) {
	var members []*entity.Profile
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if _, err := uow.Channels().GetByID(ctx, q.ChannelID, q.ProfileID, false); err != nil {
			return channelNotFound(err, q.ChannelID)
		}
		found, err := uow.Channels().Members(ctx, q.ChannelID)
		if err != nil {
			return err
		}
		members = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*entity.Profile{}
	}
	return members, nil
}

// SearchChannelsQuery runs a full-text search over channel names and
// descriptions.
type SearchChannelsQuery struct {
	Query string
	Size  int
}

type SearchChannelsHandler struct {
	Index application.ChannelIndex
}

func NewSearchChannelsHandler(index application.ChannelIndex) *SearchChannelsHandler {
	return &SearchChannelsHandler{Index: index}
}

func (h *SearchChannelsHandler) Handle(ctx context.Context, q SearchChannelsQuery) ([]application.ChannelDocument, error) {
	if h.Index == nil {
		return nil, application.ErrSearchDisabled
	}
	size := q.Size
	if size <= 0 {
		size = repository.DefaultChannelLimit
	}
	if size > repository.MaxChannelLimit {
		size = repository.MaxChannelLimit
	}
	docs, err := h.Index.Search(ctx, q.Query, size)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []application.ChannelDocument{}
	}
	return docs, nil
}
