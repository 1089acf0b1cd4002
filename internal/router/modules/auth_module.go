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

type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions *application.SessionStore
	JWT      *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, sessions *application.SessionStore, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	signupLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP(), nil)
	mailLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	otpLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	g := rg.Group("/auth")
	g.POST("/signup", signupLimiter, m.Handler.Signup)
	g.POST("/verify-email", mailLimiter, m.Handler.VerifyEmail)
	g.POST("/verify-otp", otpLimiter, m.Handler.VerifyOTP)
	g.POST("/check-verified", otpLimiter, m.Handler.CheckVerified)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	g.GET("/google/login", loginLimiter, m.Handler.GoogleLogin)
	g.GET("/google/callback", loginLimiter, m.Handler.GoogleCallback)

	auth := g.Group("/")
	auth.Use(middleware.Auth(m.Sessions, m.JWT))
	{
		auth.GET("/session", m.Handler.Session)
		auth.POST("/logout", m.Handler.Logout)
	}
}
