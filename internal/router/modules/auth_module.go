package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/communet/internal/application/mediator"
	handlers "github.com/oksasatya/communet/internal/interface/http"
	"github.com/oksasatya/communet/internal/interface/middleware"
)

// AuthModule serves /auth. Register, login and refresh are public and
// limited per client IP and path.
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Mediator *mediator.Mediator
	RDB      redis.Cmdable
	Limit    int
	Window   time.Duration
}

func NewAuthModule(h *handlers.AuthHandler, m *mediator.Mediator, rdb redis.Cmdable, limit int, window time.Duration) *AuthModule {
	return &AuthModule{Handler: h, Mediator: m, RDB: rdb, Limit: limit, Window: window}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.RDB, m.Limit, m.Window, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/register", limiter, m.Handler.Register)
	auth.POST("/login", limiter, m.Handler.Login)
	auth.POST("/refresh", limiter, m.Handler.Refresh)
	auth.POST("/logout", m.Handler.Logout)
	auth.GET("/me", middleware.Auth(m.Mediator, m.Handler.Logger), m.Handler.Me)
}
