package command

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/domain/event"
	"github.com/oksasatya/communet/internal/domain/repository"
)

// publish hands events to the publisher after a commit. Delivery is best
// effort: failures are logged and never undo the command.
func publish(ctx context.Context, pub application.EventPublisher, logger *logrus.Logger, events ...event.Event) {
	if pub == nil || len(events) == 0 {
		return
	}
	batch := make([]any, 0, len(events))
	for _, e := range events {
		batch = append(batch, e)
	}
	if err := pub.Publish(ctx, batch...); err != nil && logger != nil {
		logger.WithError(err).WithField("event", events[0].EventName()).Warn("publish domain event failed")
	}
}

func channelNotFound(err error, channelID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &application.ChannelDoesNotExistError{ChannelID: channelID}
	}
	return err
}
