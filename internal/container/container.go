package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/config"
	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/command"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/application/query"
	"github.com/oksasatya/communet/internal/application/subscriber"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
	"github.com/oksasatya/communet/internal/infrastructure/cache"
	"github.com/oksasatya/communet/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/communet/internal/infrastructure/postgres"
	"github.com/oksasatya/communet/internal/infrastructure/search"
	"github.com/oksasatya/communet/internal/infrastructure/storage"
	"github.com/oksasatya/communet/pkg/helpers"
)

// Deps are the ports the handlers are built from. Storage, Index and
// Forwarder are optional.
type Deps struct {
	Tx        repository.Transactor
	Cache     application.Cache
	Tokens    application.TokenIssuer
	Storage   application.AvatarStorage
	Index     application.ChannelIndex
	Forwarder subscriber.Forwarder
	Logger    *logrus.Logger
}

// NewMediator registers every command, query and event handler.
func NewMediator(d Deps) *mediator.Mediator {
	m := mediator.New()

	mediator.RegisterCommand[command.RegisterCommand, *entity.Profile](m, command.NewRegisterHandler(d.Tx, m, d.Logger))
	mediator.RegisterCommand[command.LoginCommand, entity.AuthData](m, command.NewLoginHandler(d.Tx, d.Tokens, d.Cache, d.Logger))
	mediator.RegisterCommand[command.RefreshTokensCommand, entity.AuthData](m, command.NewRefreshTokensHandler(d.Tokens, d.Cache))
	mediator.RegisterCommand[command.RevokeRefreshTokenCommand, bool](m, command.NewRevokeRefreshTokenHandler(d.Cache))
	mediator.RegisterCommand[command.ExtractProfileCommand, *entity.Profile](m, command.NewExtractProfileHandler(d.Tx, d.Tokens))

	deps := command.ChannelDeps{Tx: d.Tx, Events: m, Logger: d.Logger}
	mediator.RegisterCommand[command.CreateChannelCommand, *entity.Channel](m, command.NewCreateChannelHandler(deps))
	mediator.RegisterCommand[command.UpdateChannelCommand, *entity.Channel](m, command.NewUpdateChannelHandler(deps))
	mediator.RegisterCommand[command.DeleteChannelCommand, struct{}](m, command.NewDeleteChannelHandler(deps))
	mediator.RegisterCommand[command.ConnectToChannelCommand, *entity.Channel](m, command.NewConnectToChannelHandler(deps))
	mediator.RegisterCommand[command.DisconnectFromChannelCommand, struct{}](m, command.NewDisconnectFromChannelHandler(deps))
	mediator.RegisterCommand[command.UploadChannelAvatarCommand, *entity.Channel](m, command.NewUploadChannelAvatarHandler(deps, d.Storage))

	mediator.RegisterQuery[query.GetAllChannelsQuery, query.ChannelPage](m, query.NewGetAllChannelsHandler(d.Tx))
	mediator.RegisterQuery[query.GetChannelByIDQuery, *entity.Channel](m, query.NewGetChannelByIDHandler(d.Tx))
	mediator.RegisterQuery[query.GetChannelMembersQuery, []*entity.Profile](m, query.NewGetChannelMembersHandler(d.Tx))
	mediator.RegisterQuery[query.SearchChannelsQuery, []application.ChannelDocument](m, query.NewSearchChannelsHandler(d.Index))

	if d.Forwarder != nil {
		(&subscriber.Broker{Forwarder: d.Forwarder}).Register(m)
	}
	if d.Index != nil {
		(&subscriber.ChannelIndexer{Index: d.Index}).Register(m)
	}
	return m
}

// Container owns the process-wide clients and the wired mediator.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	JWT      *helpers.JWTManager
	Cookies  *helpers.Manager
	Mediator *mediator.Mediator

	closers []func()
}

// Build connects to every configured backend and wires the mediator.
// Rabbit, Elasticsearch and GCS are skipped when not configured.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Pool = pool
	c.closers = append(c.closers, pool.Close)

	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Redis = rdb
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	c.JWT = helpers.NewJWTManager(cfg.APISecret, cfg.AccessTTL, cfg.RefreshTTL)
	c.Cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	deps := Deps{
		Tx:     pginfra.NewTransactor(pool, logger),
		Cache:  cache.NewRedisCache(rdb, "refresh:"),
		Tokens: c.JWT,
		Logger: logger,
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.closers = append(c.closers, pub.Close)
		deps.Forwarder = messaging.NewEventPublisher(pub)
	} else {
		logger.Info("RABBITMQ_URL not set; domain events stay in process")
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init elasticsearch: %w", err)
		}
		idx := search.NewChannelIndex(es, cfg.ESChannelsIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index not ready; documents will be indexed on demand")
		}
		deps.Index = idx
	} else {
		logger.Info("ELASTICSEARCH_ADDRS not set; channel search disabled")
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init gcs: %w", err)
		}
		c.closers = append(c.closers, func() { _ = gcsClient.Close() })
		deps.Storage = storage.NewGCSAvatarStorage(gcsClient, cfg.GCSBucket)
	} else {
		logger.Info("GCS_BUCKET not set; avatar upload disabled")
	}

	c.Mediator = NewMediator(deps)
	return c, nil
}

// Close releases clients in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
