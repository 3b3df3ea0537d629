package entity

import (
	"time"

	"github.com/oksasatya/communet/internal/domain/values"
)

// Channel is a chat room. Deletion is a soft flag and membership is kept
// in channel_members with a connected toggle.
type Channel struct {
	Entity
	Name        values.ChannelName
	Description *string
	Avatar      *string
	IsDeleted   bool
	Members     []*Profile
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewChannel builds a channel with author as its only member.
func NewChannel(name string, description, avatar *string, author *Profile) (*Channel, error) {
	n, err := values.NewChannelName(name)
	if err != nil {
		return nil, err
	}
	ch := &Channel{Entity: newEntity(), Name: n, Description: description, Avatar: avatar}
	if author != nil {
		ch.Members = []*Profile{author}
	}
	return ch, nil
}

// Update replaces only the non-nil fields. Nothing changes when the new
// name is invalid.
func (c *Channel) Update(name, description, avatar *string) error {
	if name != nil {
		n, err := values.NewChannelName(*name)
		if err != nil {
			return err
		}
		c.Name = n
	}
	if description != nil {
		c.Description = description
	}
	if avatar != nil {
		c.Avatar = avatar
	}
	return nil
}

func (c *Channel) Delete() { c.IsDeleted = true }
