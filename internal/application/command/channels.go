package command

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/event"
	"github.com/oksasatya/communet/internal/domain/repository"
)

// ChannelDeps are shared by every channel command handler.
type ChannelDeps struct {
	Tx     repository.Transactor
	Events application.EventPublisher
	Logger *logrus.Logger
}

func snapshot(ch *entity.Channel) event.ChannelSnapshot {
	return event.ChannelSnapshot{
		ChannelID:   ch.OID,
		Name:        ch.Name.String(),
		Description: ch.Description,
		Avatar:      ch.Avatar,
	}
}

type CreateChannelCommand struct {
	Name        string
	Description *string
	Avatar      *string
	Author      *entity.Profile
}

type CreateChannelHandler struct{ ChannelDeps }

func NewCreateChannelHandler(deps ChannelDeps) *CreateChannelHandler {
	return &CreateChannelHandler{ChannelDeps: deps}
}

func (h *CreateChannelHandler) Handle(ctx context.Context, cmd CreateChannelCommand) (*entity.Channel, error) {
	if cmd.Author == nil {
		return nil, application.ErrUnauthorized
	}
	ch, err := entity.NewChannel(cmd.Name, cmd.Description, cmd.Avatar, cmd.Author)
	if err != nil {
		return nil, err
	}
	err = h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Channels().Create(ctx, cmd.Author, ch)
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, h.Events, h.Logger, event.NewChannelCreated(snapshot(ch), cmd.Author.OID))
	return ch, nil
}

// UpdateChannelCommand replaces the non-nil fields. ProfileID must belong
// to a member.
type UpdateChannelCommand struct {
	ChannelID   string
	ProfileID   string
	Name        *string
	Description *string
	Avatar      *string
}

type UpdateChannelHandler struct{ ChannelDeps }

func NewUpdateChannelHandler(deps ChannelDeps) *UpdateChannelHandler {
	return &UpdateChannelHandler{ChannelDeps: deps}
}

func (h *UpdateChannelHandler) Handle(ctx context.Context, cmd UpdateChannelCommand) (*entity.Channel, error) {
	var ch *entity.Channel
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		current, err := uow.Channels().GetByID(ctx, cmd.ChannelID, cmd.ProfileID, true)
		if err != nil {
			return channelNotFound(err, cmd.ChannelID)
		}
		if err := current.Update(cmd.Name, cmd.Description, cmd.Avatar); err != nil {
			return err
		}
		if err := uow.Channels().Update(ctx, current); err != nil {
			return channelNotFound(err, cmd.ChannelID)
		}
		ch = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, h.Events, h.Logger, event.NewChannelUpdated(snapshot(ch)))
	return ch, nil
}

type DeleteChannelCommand struct {
	ChannelID string
	ProfileID string
}

type DeleteChannelHandler struct{ ChannelDeps }

func NewDeleteChannelHandler(deps ChannelDeps) *DeleteChannelHandler {
	return &DeleteChannelHandler{ChannelDeps: deps}
}

func (h *DeleteChannelHandler) Handle(ctx context.Context, cmd DeleteChannelCommand) (struct{}, error) {
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		ch, err := uow.Channels().GetByID(ctx, cmd.ChannelID, cmd.ProfileID, true)
		if err != nil {
			return channelNotFound(err, cmd.ChannelID)
		}
		ch.Delete()
		return channelNotFound(uow.Channels().Delete(ctx, ch.OID), cmd.ChannelID)
	})
	if err != nil {
		return struct{}{}, err
	}
	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{"channel_id": cmd.ChannelID, "profile_id": cmd.ProfileID}).Info("channel deleted")
	}
	publish(ctx, h.Events, h.Logger, event.NewChannelDeleted(cmd.ChannelID))
	return struct{}{}, nil
}

type ConnectToChannelCommand struct {
	ChannelID string
	ProfileID string
}

type ConnectToChannelHandler struct{ ChannelDeps }

func NewConnectToChannelHandler(deps ChannelDeps) *ConnectToChannelHandler {
	return &ConnectToChannelHandler{ChannelDeps: deps}
}

// Handle joins the channel. A previously disconnected member rejoins; a
// connected member gets *application.UserAlreadyMemberError.
func (h *ConnectToChannelHandler) Handle(ctx context.Context, cmd ConnectToChannelCommand) (*entity.Channel, error) {
	var ch *entity.Channel
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if _, err := uow.Channels().GetByID(ctx, cmd.ChannelID, cmd.ProfileID, false); err != nil {
			return channelNotFound(err, cmd.ChannelID)
		}
		joined, err := uow.Channels().Connect(ctx, cmd.ChannelID, cmd.ProfileID)
		if err != nil {
			return err
		}
		if !joined {
			return &application.UserAlreadyMemberError{ChannelID: cmd.ChannelID, ProfileID: cmd.ProfileID}
		}
		ch, err = uow.Channels().GetByID(ctx, cmd.ChannelID, cmd.ProfileID, true)
		return channelNotFound(err, cmd.ChannelID)
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, h.Events, h.Logger, event.NewMemberConnected(cmd.ChannelID, cmd.ProfileID))
	return ch, nil
}

type DisconnectFromChannelCommand struct {
	ChannelID string
	ProfileID string
}

type DisconnectFromChannelHandler struct{ ChannelDeps }

func NewDisconnectFromChannelHandler(deps ChannelDeps) *DisconnectFromChannelHandler {
	return &DisconnectFromChannelHandler{ChannelDeps: deps}
}

// Handle leaves the channel. Profiles without a connected membership get
// *application.UserAlreadyDisconnectedError.
func (h *DisconnectFromChannelHandler) Handle(ctx context.Context, cmd DisconnectFromChannelCommand) (struct{}, error) {
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if _, err := uow.Channels().GetByID(ctx, cmd.ChannelID, cmd.ProfileID, false); err != nil {
			return channelNotFound(err, cmd.ChannelID)
		}
		left, err := uow.Channels().Disconnect(ctx, cmd.ChannelID, cmd.ProfileID)
		if err != nil {
			return err
		}
		if !left {
			return &application.UserAlreadyDisconnectedError{ChannelID: cmd.ChannelID, ProfileID: cmd.ProfileID}
		}
		return nil
	})
	if err != nil {
		return struct{}{}, err
	}
	publish(ctx, h.Events, h.Logger, event.NewMemberDisconnected(cmd.ChannelID, cmd.ProfileID))
	return struct{}{}, nil
}

// UploadChannelAvatarCommand stores Body as the channel avatar.
type UploadChannelAvatarCommand struct {
	ChannelID   string
	ProfileID   string
	Filename    string
	ContentType string
	Body        io.Reader
}

type UploadChannelAvatarHandler struct {
	ChannelDeps
	Storage application.AvatarStorage
}

func NewUploadChannelAvatarHandler(deps ChannelDeps, storage application.AvatarStorage) *UploadChannelAvatarHandler {
	return &UploadChannelAvatarHandler{ChannelDeps: deps, Storage: storage}
}

func (h *UploadChannelAvatarHandler) Handle(ctx context.Context, cmd UploadChannelAvatarCommand) (*entity.Channel, error) {
	if h.Storage == nil {
		return nil, application.ErrStorageDisabled
	}
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		_, err := uow.Channels().GetByID(ctx, cmd.ChannelID, cmd.ProfileID, true)
		return channelNotFound(err, cmd.ChannelID)
	})
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(cmd.Filename))
	objectPath := filepath.ToSlash(filepath.Join("channels", cmd.ChannelID, uuid.NewString()+ext))
	url, err := h.Storage.Upload(ctx, objectPath, cmd.ContentType, cmd.Body)
	if err != nil {
		return nil, err
	}

	var ch *entity.Channel
	err = h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Channels().SetAvatar(ctx, cmd.ChannelID, url); err != nil {
			return channelNotFound(err, cmd.ChannelID)
		}
		current, err := uow.Channels().GetByID(ctx, cmd.ChannelID, cmd.ProfileID, true)
		if err != nil {
			return channelNotFound(err, cmd.ChannelID)
		}
		ch = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, h.Events, h.Logger, event.NewChannelUpdated(snapshot(ch)))
	return ch, nil
}
