package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokebase/pokebase-api/internal/container"
	handlers "github.com/pokebase/pokebase-api/internal/interface/http"
	"github.com/pokebase/pokebase-api/internal/interface/middleware"
)

type SyncModule struct {
	Handler  *handlers.SyncHandler
	AdminKey string
}

func NewSyncModule(h *handlers.SyncHandler, adminKey string) *SyncModule {
	return &SyncModule{Handler: h, AdminKey: adminKey}
}

// Register mounts the bulk sync endpoints. Internal callers and holders of
// the admin key skip the rate limit.
func (m *SyncModule) Register(rg *gin.RouterGroup) {
	allow := middleware.AllowAny(
		middleware.AllowPrivateIP(),
		middleware.AllowHeader(middleware.AdminKeyHeader, m.AdminKey),
	)
	g := rg.Group("/")
	g.Use(
		middleware.RateLimit(container.GetRedis(), 2, time.Minute, middleware.KeyByIPAndPath(), allow),
		middleware.AdminKey(m.AdminKey),
	)
	{
		g.GET("/update-sets", m.Handler.UpdateSets)
		g.GET("/update-cards", m.Handler.UpdateCards)
	}
}
