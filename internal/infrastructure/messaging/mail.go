package messaging

import (
	"context"
	"fmt"

	"github.com/oksasatya/communet/internal/domain/event"
	"github.com/oksasatya/communet/pkg/mailer"
	"github.com/oksasatya/communet/pkg/mailer/templates"
)

// WelcomeMailer sends a welcome e-mail for every user.registered event and
// ignores the rest.
func WelcomeMailer(sender mailer.Sender, appName string) HandlerFunc {
	return func(ctx context.Context, env Envelope) error {
		if env.Type != event.NameUserRegistered {
			return nil
		}
		var e event.UserRegistered
		if err := env.Decode(&e); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if e.Email == "" {
			return fmt.Errorf("%s without email for profile %s", env.Type, e.ProfileID)
		}

		data := templates.NewEmailData(appName, e.DisplayName, e.Username, e.Email, templates.WithTime(env.OccurredAt))
		mail, err := templates.Render(templates.Welcome, data)
		if err != nil {
			return err
		}
		return sender.Send(ctx, mailer.Message{To: e.Email, Subject: mail.Subject, Text: mail.Text, HTML: mail.HTML})
	}
}
