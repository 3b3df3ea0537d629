package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/communet/internal/application/mediator"
	handlers "github.com/oksasatya/communet/internal/interface/http"
	"github.com/oksasatya/communet/internal/interface/middleware"
)

// ChannelModule serves /channels. Every route needs a bearer token.
type ChannelModule struct {
	Handler  *handlers.ChannelHandler
	Mediator *mediator.Mediator
	RDB      redis.Cmdable
}

func NewChannelModule(h *handlers.ChannelHandler, m *mediator.Mediator, rdb redis.Cmdable) *ChannelModule {
	return &ChannelModule{Handler: h, Mediator: m, RDB: rdb}
}

func (m *ChannelModule) Register(rg *gin.RouterGroup) {
	channels := rg.Group("/channels")
	channels.Use(
		middleware.Auth(m.Mediator, m.Handler.Logger),
		middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByProfile(), nil),
	)
	{
		channels.GET("", m.Handler.List)
		channels.POST("", m.Handler.Create)
		channels.GET("/search", m.Handler.Search)
		channels.GET("/:id", m.Handler.Get)
		channels.PUT("/:id", m.Handler.Update)
		channels.DELETE("/:id", m.Handler.Delete)
		channels.POST("/:id/connect", m.Handler.Connect)
		channels.POST("/:id/disconnect", m.Handler.Disconnect)
		channels.GET("/:id/members", m.Handler.Members)
		channels.POST("/:id/avatar", m.Handler.UploadAvatar)
	}
}
