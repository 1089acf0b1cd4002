package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/pkg/response"
)

type CatalogHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *application.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

// Search GET /api/search?query=
func (h *CatalogHandler) Search(c *gin.Context) {
	cards, err := h.Svc.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		fail(c, h.Logger, err, "failed to search cards")
		return
	}
	response.Success(c, http.StatusOK, cards, "cards", map[string]any{"count": len(cards)})
}

// Card GET /api/cards/:id
func (h *CatalogHandler) Card(c *gin.Context) {
	card, err := h.Svc.Card(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "failed to load card")
		return
	}
	response.Success(c, http.StatusOK, card, "card", nil)
}

// Sets GET /api/sets
func (h *CatalogHandler) Sets(c *gin.Context) {
	sets, err := h.Svc.ListSets(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err, "failed to list sets")
		return
	}
	response.Success(c, http.StatusOK, sets, "sets", map[string]any{"count": len(sets)})
}

// Set GET /api/sets/:id
func (h *CatalogHandler) Set(c *gin.Context) {
	set, err := h.Svc.Set(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "failed to load set")
		return
	}
	response.Success(c, http.StatusOK, set, "set", nil)
}

// SetCards GET /api/sets/:id/cards
func (h *CatalogHandler) SetCards(c *gin.Context) {
	cards, err := h.Svc.SetCards(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "failed to list cards")
		return
	}
	response.Success(c, http.StatusOK, cards, "cards", map[string]any{"count": len(cards)})
}

// SourceSearch GET /api/tcg/search?q= forwards a raw query to the card-data API.
func (h *CatalogHandler) SourceSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	cards, err := h.Svc.SearchSource(c.Request.Context(), q)
	if err != nil {
		fail(c, h.Logger, err, "card-data API request failed")
		return
	}
	response.Success(c, http.StatusOK, cards, "cards", map[string]any{"count": len(cards)})
}
