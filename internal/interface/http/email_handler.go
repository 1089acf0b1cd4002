package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/mailer"
	"github.com/pokebase/pokebase-api/pkg/response"
)

// EmailHandler lets operators push an ad-hoc email through the same
// pipeline the verification codes use.
type EmailHandler struct {
	Mail    application.Mailer
	Enabled bool
	Logger  *logrus.Logger
}

func NewEmailHandler(mail application.Mailer, enabled bool, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{Mail: mail, Enabled: enabled, Logger: logger}
}

type sendEmailRequest struct {
	To       string         `json:"to" binding:"required,email"`
	Template string         `json:"template"` // optional: verification_code
	Data     map[string]any `json:"data"`
	Subject  string         `json:"subject"` // required if no template
	Text     string         `json:"text"`
	HTML     string         `json:"html"`
}

// Send POST /api/email/send (admin key required)
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	job := mailer.EmailJob{To: req.To}
	if req.Template != "" {
		job.Template = req.Template
		job.Data = req.Data
	} else {
		job.Subject = req.Subject
		job.Text = req.Text
		job.HTML = req.HTML
	}
	// Validate on a copy so templated jobs are rendered by the worker, not here.
	check := job
	if err := check.Prepare(); err != nil {
		response.Error[any](c, http.StatusBadRequest, "either template or subject with text/html is required", err.Error())
		return
	}

	if !h.Enabled {
		response.Success[any](c, http.StatusAccepted, map[string]any{"enqueued": false, "disabled": true}, "email sending disabled", nil)
		return
	}
	if err := h.Mail.Dispatch(c.Request.Context(), job); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mailer.ErrNoTransport) {
			status = http.StatusServiceUnavailable
		}
		helpers.LogError(h.Logger, "failed to dispatch email job", err, logrus.Fields{"to": job.To})
		response.Error[any](c, status, "failed to enqueue", nil)
		return
	}
	response.Success[any](c, http.StatusAccepted, map[string]any{"enqueued": true}, "email enqueued", nil)
}
