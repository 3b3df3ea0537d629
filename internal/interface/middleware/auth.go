package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/command"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/pkg/response"
)

const (
	CtxProfileKey   = "profile"
	CtxProfileIDKey = "profileID"
)

// Auth resolves the Authorization header into a profile through the
// mediator and stores it in the gin context. Both "Bearer <jwt>" and a
// bare token are accepted. Only a rejected token is a 401; lookup failures
// are logged and answered with 500.
func Auth(m *mediator.Mediator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "auth token not found", nil)
			return
		}
		profile, err := mediator.Send[*entity.Profile](c.Request.Context(), m, command.ExtractProfileCommand{Token: token})
		switch {
		case errors.Is(err, application.ErrUnauthorized), err == nil && profile == nil:
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		case err != nil:
			if logger != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"request_id": c.GetString("request_id"),
					"path":       c.FullPath(),
				}).Error("resolve profile failed")
			}
			response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		c.Set(CtxProfileKey, profile)
		c.Set(CtxProfileIDKey, profile.OID)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// CurrentProfile returns the profile stored by Auth.
func CurrentProfile(c *gin.Context) (*entity.Profile, bool) {
	v, ok := c.Get(CtxProfileKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*entity.Profile)
	return p, ok && p != nil
}
