package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/pkg/response"
)

type CollectionHandler struct {
	Svc    *application.CollectionService
	Logger *logrus.Logger
}

func NewCollectionHandler(svc *application.CollectionService, logger *logrus.Logger) *CollectionHandler {
	return &CollectionHandler{Svc: svc, Logger: logger}
}

type addUserCardRequest struct {
	CardID  string           `json:"cardId" binding:"required"`
	Quality string           `json:"quality" binding:"omitempty,quality"`
	ForSale bool             `json:"forSale"`
	Price   *decimal.Decimal `json:"price" binding:"omitempty,price"`
	Notes   string           `json:"notes" binding:"max=1000"`
}

type updateUserCardRequest struct {
	Quality *string          `json:"quality" binding:"omitempty,quality"`
	ForSale *bool            `json:"forSale"`
	Price   *decimal.Decimal `json:"price" binding:"omitempty,price"`
	Notes   *string          `json:"notes" binding:"omitempty,max=1000"`
}

// Add POST /api/add-usercard
func (h *CollectionHandler) Add(c *gin.Context) {
	var req addUserCardRequest
	if !bindJSON(c, &req) {
		return
	}
	uc, err := h.Svc.Add(c.Request.Context(), currentUserID(c), application.AddCardInput{
		CardID:  req.CardID,
		Quality: req.Quality,
		ForSale: req.ForSale,
		Price:   req.Price,
		Notes:   req.Notes,
	})
	if err != nil {
		fail(c, h.Logger, err, "failed to add card")
		return
	}
	response.Success(c, http.StatusCreated, uc, "card added", nil)
}

// List GET /api/user-cards
func (h *CollectionHandler) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, h.Logger, err, "failed to fetch user cards")
		return
	}
	response.Success(c, http.StatusOK, list, "user cards", map[string]any{"count": len(list)})
}

// Update PUT /api/user-cards/:id
func (h *CollectionHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateUserCardRequest
	if !bindJSON(c, &req) {
		return
	}
	uc, err := h.Svc.Update(c.Request.Context(), currentUserID(c), id, application.UpdateCardInput{
		Quality: req.Quality,
		ForSale: req.ForSale,
		Price:   req.Price,
		Notes:   req.Notes,
	})
	if err != nil {
		fail(c, h.Logger, err, "failed to update card")
		return
	}
	response.Success(c, http.StatusOK, uc, "card updated", nil)
}

// Delete DELETE /api/user-cards/:id
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		fail(c, h.Logger, err, "failed to delete card")
		return
	}
	c.Status(http.StatusNoContent)
}

// Marketplace GET /api/marketplace
func (h *CollectionHandler) Marketplace(c *gin.Context) {
	list, err := h.Svc.Marketplace(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err, "failed to fetch marketplace")
		return
	}
	response.Success(c, http.StatusOK, list, "marketplace", map[string]any{"count": len(list)})
}
