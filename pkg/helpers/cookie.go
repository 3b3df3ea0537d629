package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const RefreshCookie = "refresh_token"

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetRefresh stores the refresh token in an HttpOnly cookie living as long
// as the token itself.
func (m *Manager) SetRefresh(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, token, maxAge(ttl), "/", m.Domain, m.Secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAge(ttl time.Duration) int {
	sec := int(ttl.Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
