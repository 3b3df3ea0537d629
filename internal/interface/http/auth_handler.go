package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/command"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/interface/middleware"
	"github.com/oksasatya/communet/pkg/helpers"
	"github.com/oksasatya/communet/pkg/response"
)

type AuthHandler struct {
	Mediator *mediator.Mediator
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(m *mediator.Mediator, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Mediator: m, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Avatar      string `json:"avatar"`
}

// loginRequest carries a username or an e-mail in Username.
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	profile, err := mediator.Send[*entity.Profile](c.Request.Context(), h.Mediator, command.RegisterCommand{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Avatar:      req.Avatar,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, newProfileView(profile), "registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	auth, err := mediator.Send[entity.AuthData](c.Request.Context(), h.Mediator, command.NewLoginCommand(req.Username, req.Password))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetRefresh(c, auth.RefreshToken, auth.RefreshExpires)
	response.Success(c, http.StatusOK, newTokensView(auth), "login successful", nil)
}

// Refresh POST /api/auth/refresh. The cookie wins over the body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshToken(c)
	if token == "" {
		writeError(c, h.Logger, application.ErrRefreshExpired)
		return
	}
	auth, err := mediator.Send[entity.AuthData](c.Request.Context(), h.Mediator, command.RefreshTokensCommand{RefreshToken: token})
	if err != nil {
		h.Cookies.Clear(c)
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetRefresh(c, auth.RefreshToken, auth.RefreshExpires)
	response.Success(c, http.StatusOK, newTokensView(auth), "token refreshed", nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	revoked := false
	if token := h.refreshToken(c); token != "" {
		ok, err := mediator.Send[bool](c.Request.Context(), h.Mediator, command.RevokeRefreshTokenCommand{RefreshToken: token})
		if err != nil {
			writeError(c, h.Logger, err)
			return
		}
		revoked = ok
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true, "revoked": revoked}, "logged out", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		writeError(c, h.Logger, application.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, newProfileView(profile), "", nil)
}

func (h *AuthHandler) refreshToken(c *gin.Context) string {
	if v, err := c.Cookie(helpers.RefreshCookie); err == nil && v != "" {
		return v
	}
	var req refreshRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	return req.RefreshToken
}
