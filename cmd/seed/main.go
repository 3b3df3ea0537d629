package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/communet/config"
	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/command"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/application/query"
	"github.com/oksasatya/communet/internal/container"
	"github.com/oksasatya/communet/internal/domain/entity"
	pginfra "github.com/oksasatya/communet/internal/infrastructure/postgres"
	"github.com/oksasatya/communet/pkg/helpers"
)

const (
	demoUsername = "demoUser"
	demoEmail    = "demo@communet.local"
	demoPassword = "password123"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer c.Close()
	m := c.Mediator

	_, err = mediator.Send[*entity.Profile](ctx, m, command.RegisterCommand{
		DisplayName: demoUsername,
		Username:    demoUsername,
		Email:       demoEmail,
		Password:    demoPassword,
	})
	var exists *application.UserAlreadyExistsError
	if err != nil && !errors.As(err, &exists) {
		log.Fatalf("failed to seed user: %v", err)
	}

	auth, err := mediator.Send[entity.AuthData](ctx, m, command.NewLoginCommand(demoEmail, demoPassword))
	if err != nil {
		log.Fatalf("failed to log in as %s: %v", demoEmail, err)
	}
	profile, err := mediator.Send[*entity.Profile](ctx, m, command.ExtractProfileCommand{Token: auth.AccessToken})
	if err != nil {
		log.Fatalf("failed to load profile: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", profile.OID, demoEmail, demoUsername, demoPassword)

	page, err := mediator.Ask[query.ChannelPage](ctx, m, query.GetAllChannelsQuery{ProfileID: profile.OID})
	if err != nil {
		log.Fatalf("failed to list channels: %v", err)
	}
	if page.Count > 0 {
		fmt.Printf("channels already seeded: %d\n", page.Count)
		return
	}

	description := "Say hello to everyone"
	ch, err := mediator.Send[*entity.Channel](ctx, m, command.CreateChannelCommand{
		Name:        "general",
		Description: &description,
		Author:      profile,
	})
	if err != nil {
		log.Fatalf("failed to seed channel: %v", err)
	}
	fmt.Printf("seeded channel: id=%s name=%s\n", ch.OID, ch.Name)
}
