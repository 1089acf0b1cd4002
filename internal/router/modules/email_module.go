package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokebase/pokebase-api/internal/container"
	handlers "github.com/pokebase/pokebase-api/internal/interface/http"
	"github.com/pokebase/pokebase-api/internal/interface/middleware"
)

type EmailModule struct {
	Handler  *handlers.EmailHandler
	AdminKey string
}

func NewEmailModule(h *handlers.EmailHandler, adminKey string) *EmailModule {
	return &EmailModule{Handler: h, AdminKey: adminKey}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/email")
	g.Use(
		middleware.AdminKey(m.AdminKey),
		middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil),
	)
	{
		g.POST("/send", m.Handler.Send)
	}
}
