// Package subscriber reacts to domain events published through the
// mediator.
package subscriber

import (
	"context"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/domain/event"
)

// ChannelIndexer mirrors channel changes into the search index.
type ChannelIndexer struct {
	Index application.ChannelIndex
}

func document(s event.ChannelSnapshot) application.ChannelDocument {
	return application.ChannelDocument{
		ID:          s.ChannelID,
		Name:        s.Name,
		Description: s.Description,
		Avatar:      s.Avatar,
	}
}

func (c *ChannelIndexer) Register(m *mediator.Mediator) {
	mediator.RegisterEvent[event.ChannelCreated](m, mediator.EventHandlerFunc[event.ChannelCreated](
		func(ctx context.Context, e event.ChannelCreated) error {
			return c.Index.Index(ctx, document(e.ChannelSnapshot))
		}))
	mediator.RegisterEvent[event.ChannelUpdated](m, mediator.EventHandlerFunc[event.ChannelUpdated](
		func(ctx context.Context, e event.ChannelUpdated) error {
			return c.Index.Index(ctx, document(e.ChannelSnapshot))
		}))
	mediator.RegisterEvent[event.ChannelDeleted](m, mediator.EventHandlerFunc[event.ChannelDeleted](
		func(ctx context.Context, e event.ChannelDeleted) error {
			return c.Index.Remove(ctx, e.ChannelID)
		}))
}

// Forwarder sends an event out of process.
type Forwarder interface {
	Forward(ctx context.Context, e event.Event) error
}

// Broker hands every domain event to a Forwarder.
type Broker struct {
	Forwarder Forwarder
}

func (b *Broker) Register(m *mediator.Mediator) {
	forward(m, b.Forwarder, event.UserRegistered{})
	forward(m, b.Forwarder, event.ChannelCreated{})
	forward(m, b.Forwarder, event.ChannelUpdated{})
	forward(m, b.Forwarder, event.ChannelDeleted{})
	forward(m, b.Forwarder, event.MemberConnected{})
	forward(m, b.Forwarder, event.MemberDisconnected{})
}

func forward[E event.Event](m *mediator.Mediator, f Forwarder, _ E) {
	mediator.RegisterEvent[E](m, mediator.EventHandlerFunc[E](func(ctx context.Context, e E) error {
		return f.Forward(ctx, e)
	}))
}
