package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/infrastructure/vision"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/response"
)

type CenteringHandler struct {
	MaxUploadBytes int64
	Logger         *logrus.Logger
}

func NewCenteringHandler(maxUploadBytes int64, logger *logrus.Logger) *CenteringHandler {
	return &CenteringHandler{MaxUploadBytes: maxUploadBytes, Logger: logger}
}

// Evaluate POST /api/centering (multipart field "image")
func (h *CenteringHandler) Evaluate(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "No image provided", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read upload", nil)
		return
	}
	defer func() { _ = f.Close() }()

	img, err := vision.Decode(f)
	if err != nil {
		msg := "unsupported or corrupt image"
		if errors.Is(err, vision.ErrTooLarge) {
			msg = err.Error()
		}
		response.Error[any](c, http.StatusBadRequest, msg, nil)
		return
	}
	res, err := vision.Evaluate(img)
	if err != nil {
		if errors.Is(err, vision.ErrNoCard) {
			response.Error[any](c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		helpers.LogError(h.Logger, "centering evaluation failed", err, nil)
		response.Error[any](c, http.StatusInternalServerError, "Error processing image", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "centering evaluated", nil)
}
