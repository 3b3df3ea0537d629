package router

import (
	"github.com/oksasatya/communet/internal/container"
	handlers "github.com/oksasatya/communet/internal/interface/http"
	"github.com/oksasatya/communet/internal/router/modules"
)

// InitModules adds every feature module backed by c to the registry.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	authHandler := handlers.NewAuthHandler(c.Mediator, c.Cookies, c.Logger)
	r.Add(modules.NewAuthModule(authHandler, c.Mediator, c.Redis, cfg.AuthRateLimit, cfg.AuthRateWindow))

	channelHandler := handlers.NewChannelHandler(c.Mediator, c.Logger)
	r.Add(modules.NewChannelModule(channelHandler, c.Mediator, c.Redis))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
