package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/internal/container"
	handlers "github.com/pokebase/pokebase-api/internal/interface/http"
	"github.com/pokebase/pokebase-api/internal/interface/middleware"
	"github.com/pokebase/pokebase-api/pkg/helpers"
)

type CollectionModule struct {
	Handler  *handlers.CollectionHandler
	Sessions *application.SessionStore
	JWT      *helpers.JWTManager
}

func NewCollectionModule(h *handlers.CollectionHandler, sessions *application.SessionStore, jwt *helpers.JWTManager) *CollectionModule {
	return &CollectionModule{Handler: h, Sessions: sessions, JWT: jwt}
}

func (m *CollectionModule) Register(rg *gin.RouterGroup) {
	rg.GET("/marketplace", m.Handler.Marketplace)

	auth := rg.Group("/")
	auth.Use(
		middleware.Auth(m.Sessions, m.JWT),
		middleware.RequireVerified(),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/add-usercard", m.Handler.Add)
		auth.GET("/user-cards", m.Handler.List)
		auth.PUT("/user-cards/:id", m.Handler.Update)
		auth.DELETE("/user-cards/:id", m.Handler.Delete)
	}
}
