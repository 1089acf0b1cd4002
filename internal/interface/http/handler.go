package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/interface/middleware"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/response"
	"github.com/pokebase/pokebase-api/pkg/validation"
)

// statusFor maps application errors to HTTP statuses. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrVerificationNotFound),
		errors.Is(err, application.ErrCardNotFound),
		errors.Is(err, application.ErrSetNotFound),
		errors.Is(err, application.ErrUserCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrEmailTaken),
		errors.Is(err, helpers.ErrPasswordTooLong),
		errors.Is(err, application.ErrAlreadyVerified),
		errors.Is(err, application.ErrVerificationExpired):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. 500s are logged and their cause is not
// exposed to the client.
func fail(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		helpers.LogError(logger, fallback, err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
		msg = fallback
	}
	response.Error[any](c, status, msg, nil)
}

// bindJSON binds and validates the body, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		msg := "invalid payload"
		if fields := validation.RequiredFields(err); len(fields) > 0 {
			msg = requiredMessage(fields)
		}
		response.Error[any](c, http.StatusBadRequest, msg, validation.ToDetails(err))
		return false
	}
	return true
}

// requiredMessage renders ["name","email","password"] as
// "name, email, and password are required".
func requiredMessage(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0] + " is required"
	case 2:
		return fields[0] + " and " + fields[1] + " are required"
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1] + " are required"
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserID)
}

// uuidParam reads a UUID path parameter, writing a 400 when malformed.
func uuidParam(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if _, err := uuid.Parse(v); err != nil {
		response.Error[any](c, http.StatusBadRequest, name+" must be a valid UUID", nil)
		return "", false
	}
	return v, true
}

type userResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Image         string     `json:"image"`
	EmailVerified *time.Time `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Image:         u.Image,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
