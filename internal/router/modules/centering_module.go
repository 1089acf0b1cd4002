package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokebase/pokebase-api/internal/container"
	handlers "github.com/pokebase/pokebase-api/internal/interface/http"
	"github.com/pokebase/pokebase-api/internal/interface/middleware"
)

type CenteringModule struct {
	Handler *handlers.CenteringHandler
}

func NewCenteringModule(h *handlers.CenteringHandler) *CenteringModule {
	return &CenteringModule{Handler: h}
}

func (m *CenteringModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIP(), nil)
	rg.POST("/centering", rl, m.Handler.Evaluate)
}
