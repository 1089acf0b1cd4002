package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokebase/pokebase-api/internal/container"
	"github.com/pokebase/pokebase-api/internal/interface/middleware"
)

// DebugModule exposes expvar, including the catalog sync counters.
type DebugModule struct {
	AdminKey string
}

func NewDebugModule(adminKey string) *DebugModule { return &DebugModule{AdminKey: adminKey} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	allow := middleware.AllowAny(
		middleware.AllowPrivateIP(),
		middleware.AllowHeader(middleware.AdminKeyHeader, m.AdminKey),
	)
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), allow)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
