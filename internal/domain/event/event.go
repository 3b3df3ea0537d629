package event

import "time"

// Event is something that happened to an aggregate after its transaction
// committed.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// Names used on the wire.
const (
	NameUserRegistered     = "user.registered"
	NameChannelCreated     = "channel.created"
	NameChannelUpdated     = "channel.updated"
	NameChannelDeleted     = "channel.deleted"
	NameMemberConnected    = "channel.member_connected"
	NameMemberDisconnected = "channel.member_disconnected"
)

type Base struct {
	At time.Time `json:"occurred_at"`
}

func (b Base) OccurredAt() time.Time { return b.At }

func now() Base { return Base{At: time.Now().UTC()} }

type UserRegistered struct {
	Base
	ProfileID   string `json:"profile_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func NewUserRegistered(profileID, username, email, displayName string) UserRegistered {
	return UserRegistered{Base: now(), ProfileID: profileID, Username: username, Email: email, DisplayName: displayName}
}

func (UserRegistered) EventName() string { return NameUserRegistered }

// ChannelSnapshot is the channel state carried by create/update events.
type ChannelSnapshot struct {
	ChannelID   string  `json:"channel_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

type ChannelCreated struct {
	Base
	ChannelSnapshot
	AuthorID string `json:"author_id"`
}

func NewChannelCreated(s ChannelSnapshot, authorID string) ChannelCreated {
	return ChannelCreated{Base: now(), ChannelSnapshot: s, AuthorID: authorID}
}

func (ChannelCreated) EventName() string { return NameChannelCreated }

type ChannelUpdated struct {
	Base
	ChannelSnapshot
}

func NewChannelUpdated(s ChannelSnapshot) ChannelUpdated {
	return ChannelUpdated{Base: now(), ChannelSnapshot: s}
}

func (ChannelUpdated) EventName() string { return NameChannelUpdated }

type ChannelDeleted struct {
	Base
	ChannelID string `json:"channel_id"`
}

func NewChannelDeleted(channelID string) ChannelDeleted {
	return ChannelDeleted{Base: now(), ChannelID: channelID}
}

func (ChannelDeleted) EventName() string { return NameChannelDeleted }

type MemberConnected struct {
	Base
	ChannelID string `json:"channel_id"`
	ProfileID string `json:"profile_id"`
}

func NewMemberConnected(channelID, profileID string) MemberConnected {
	return MemberConnected{Base: now(), ChannelID: channelID, ProfileID: profileID}
}

func (MemberConnected) EventName() string { return NameMemberConnected }

type MemberDisconnected struct {
	Base
	ChannelID string `json:"channel_id"`
	ProfileID string `json:"profile_id"`
}

func NewMemberDisconnected(channelID, profileID string) MemberDisconnected {
	return MemberDisconnected{Base: now(), ChannelID: channelID, ProfileID: profileID}
}

func (MemberDisconnected) EventName() string { return NameMemberDisconnected }
