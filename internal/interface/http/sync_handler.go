package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/pkg/helpers"
)

type SyncHandler struct {
	Svc    *application.SyncService
	Logger *logrus.Logger
}

func NewSyncHandler(svc *application.SyncService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{Svc: svc, Logger: logger}
}

// UpdateSets GET /api/update-sets
func (h *SyncHandler) UpdateSets(c *gin.Context) {
	h.run(c, "sets", h.Svc.UpdateSets)
}

// UpdateCards GET /api/update-cards
func (h *SyncHandler) UpdateCards(c *gin.Context) {
	h.run(c, "cards", h.Svc.UpdateCards)
}

// run writes the SyncResult as-is; it is the response body of both sync
// endpoints rather than the usual envelope.
func (h *SyncHandler) run(c *gin.Context, kind string, fn func(ctx context.Context) (*application.SyncResult, error)) {
	res, err := fn(c.Request.Context())
	if errors.Is(err, application.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, &application.SyncResult{Message: "card-data API is not configured"})
		return
	}
	if err != nil {
		helpers.LogError(h.Logger, "sync "+kind+" failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		c.JSON(http.StatusInternalServerError, &application.SyncResult{
			Success: false,
			Message: "Failed to fetch " + kind + " from the card-data API",
		})
		return
	}
	helpers.LogInfo(h.Logger, "sync "+kind+" finished", logrus.Fields{
		"updated": res.UpdatedCount,
		"failed":  res.FailedCount,
	})
	c.JSON(http.StatusOK, res)
}
