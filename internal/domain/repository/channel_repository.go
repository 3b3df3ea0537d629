package repository

import (
	"context"

	"github.com/oksasatya/communet/internal/domain/entity"
)

const (
	DefaultChannelLimit = 10
	MaxChannelLimit     = 100
)

// ChannelFilters paginates channel listings.
type ChannelFilters struct {
	Limit  int
	Offset int
}

// Normalize applies defaults and bounds.
func (f ChannelFilters) Normalize() ChannelFilters {
	if f.Limit <= 0 {
		f.Limit = DefaultChannelLimit
	}
	if f.Limit > MaxChannelLimit {
		f.Limit = MaxChannelLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ChannelRepository defines persistence for channels and their membership.
// Soft-deleted channels are invisible to every read.
type ChannelRepository interface {
	// Create stores the channel and adds author as a connected member.
	Create(ctx context.Context, author *entity.Profile, ch *entity.Channel) error
	// List returns the channels profileID is connected to and their total.
	List(ctx context.Context, filters ChannelFilters, profileID string) ([]*entity.Channel, int, error)
	// GetByID loads a channel with its connected members. With checkMember
	// set, profileID must have a membership row for the channel.
	GetByID(ctx context.Context, channelID, profileID string, checkMember bool) (*entity.Channel, error)
	Update(ctx context.Context, ch *entity.Channel) error
	SetAvatar(ctx context.Context, channelID, avatar string) error
	// Delete sets the soft-delete flag.
	Delete(ctx context.Context, channelID string) error
	Members(ctx context.Context, channelID string) ([]*entity.Profile, error)
	// Connect returns false when profileID is already a connected member.
	// A disconnected membership is flipped back to connected.
	Connect(ctx context.Context, channelID, profileID string) (bool, error)
	// Disconnect returns false when there is no connected membership.
	Disconnect(ctx context.Context, channelID, profileID string) (bool, error)
}
