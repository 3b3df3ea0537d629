package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/domain/values"
	"github.com/oksasatya/communet/pkg/response"
	"github.com/oksasatya/communet/pkg/validation"
)

// StatusFor maps an application error to its HTTP status. Anything it
// does not recognize is a 500.
func StatusFor(err error) int {
	var (
		invalid      *values.ValidationError
		exists       *application.UserAlreadyExistsError
		missing      *application.ChannelDoesNotExistError
		member       *application.UserAlreadyMemberError
		disconnected *application.UserAlreadyDisconnectedError
	)
	switch {
	case errors.As(err, &invalid),
		errors.As(err, &exists),
		errors.As(err, &member),
		errors.As(err, &disconnected):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusNotFound
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrUnauthorized),
		errors.Is(err, application.ErrRefreshExpired):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrStorageDisabled),
		errors.Is(err, application.ErrSearchDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err once at the transport boundary. Unexpected
// errors are logged and hidden from the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, status, "internal server error", nil)
		return
	}
	response.Error[any](c, status, err.Error(), nil)
}

func writeBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
