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

// ProfileModule serves the signed-in user's profile under /api/profile and
// public profiles under /api/users/:id.
type ProfileModule struct {
	Handler  *handlers.UserHandler
	Sessions *application.SessionStore
	JWT      *helpers.JWTManager
}

func NewProfileModule(h *handlers.UserHandler, sessions *application.SessionStore, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, Sessions: sessions, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	rg.GET("/users/:id", middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil), m.Handler.PublicProfile)

	auth := rg.Group("/profile")
	auth.Use(middleware.Auth(m.Sessions, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("", m.Handler.GetProfile)
		auth.PUT("", m.Handler.UpdateProfile)
		auth.DELETE("", m.Handler.DeleteProfile)
		auth.POST("/avatar", middleware.RateLimit(rdb, 10, time.Hour, middleware.KeyByUserID(), nil), m.Handler.UploadAvatar)
	}
}
