package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokebase/pokebase-api/internal/container"
	handlers "github.com/pokebase/pokebase-api/internal/interface/http"
	"github.com/pokebase/pokebase-api/internal/interface/middleware"
)

type CatalogModule struct {
	Handler *handlers.CatalogHandler
}

func NewCatalogModule(h *handlers.CatalogHandler) *CatalogModule {
	return &CatalogModule{Handler: h}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	rg.GET("/search", middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil), m.Handler.Search)
	rg.GET("/cards/:id", m.Handler.Card)
	rg.GET("/sets", m.Handler.Sets)
	rg.GET("/sets/:id", m.Handler.Set)
	rg.GET("/sets/:id/cards", m.Handler.SetCards)
	// Each call spends card-data API quota.
	rg.GET("/tcg/search", middleware.RateLimit(rdb, 20, time.Minute, middleware.KeyByIP(), nil), m.Handler.SourceSearch)
}
