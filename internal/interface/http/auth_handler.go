package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/internal/infrastructure/oauth"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/response"
)

const oauthStateTTL = 10 * time.Minute

// OAuthProvider is implemented by *oauth.GoogleProvider.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Identity, error)
}

type AuthHandler struct {
	Svc             *application.AuthService
	Google          OAuthProvider
	Cookies         *helpers.Manager
	SuccessRedirect string
	Logger          *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, google OAuthProvider, cookies *helpers.Manager, successRedirect string, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Google: google, Cookies: cookies, SuccessRedirect: successRedirect, Logger: logger}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required,otp"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, application.ErrEmailDelivery) {
			response.Error[any](c, http.StatusInternalServerError, application.ErrEmailDelivery.Error(), nil)
			return
		}
		fail(c, h.Logger, err, "failed to create user")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": toUserResponse(u)},
		"User created successfully. Please check your email to verify your account.", nil)
}

// VerifyEmail POST /api/auth/verify-email sends a fresh code.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.Svc.ResendVerification(c.Request.Context(), normEmail(req.Email))
	switch {
	case err == nil:
		response.Success[any](c, http.StatusOK, nil, "Verification email sent successfully", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "no user found with this email", nil)
	case errors.Is(err, application.ErrEmailDelivery):
		response.Error[any](c, http.StatusInternalServerError, application.ErrEmailDelivery.Error(), nil)
	default:
		fail(c, h.Logger, err, application.ErrEmailDelivery.Error())
	}
}

// VerifyOTP POST /api/auth/verify-otp confirms the code and signs the user in.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	u, pair, err := h.Svc.VerifyOTP(c.Request.Context(), normEmail(req.Email), req.Token)
	if err != nil {
		fail(c, h.Logger, err, "failed to verify email")
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(u)}, "Email verified successfully", nil)
}

// CheckVerified POST /api/auth/check-verified
func (h *AuthHandler) CheckVerified(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.CheckVerified(c.Request.Context(), normEmail(req.Email))
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "no user found with this email", nil)
			return
		}
		fail(c, h.Logger, err, "failed to check email verification status")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":             u.ID,
		"email":          u.Email,
		"email_verified": u.IsVerified(),
	}, "verification status", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), normEmail(req.Email), req.Password)
	if err != nil {
		fail(c, h.Logger, err, "login failed")
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(u)}, "login successful",
		map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			h.Cookies.Clear(c)
			response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}
		fail(c, h.Logger, err, "refresh failed")
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed",
		map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), currentUserID(c)); err != nil {
		helpers.LogError(h.Logger, "session delete failed", err, logrus.Fields{"user_id": currentUserID(c)})
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// Session GET /api/auth/session (auth required)
func (h *AuthHandler) Session(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(u)}, "session", nil)
}

// GoogleLogin GET /api/auth/google/login
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "google sign-in is not configured", nil)
		return
	}
	state, err := helpers.GenState()
	if err != nil {
		fail(c, h.Logger, err, "failed to start google sign-in")
		return
	}
	h.Cookies.SetOAuthState(c, state, oauthStateTTL)
	c.Redirect(http.StatusTemporaryRedirect, h.Google.AuthURL(state))
}

// GoogleCallback GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "google sign-in is not configured", nil)
		return
	}
	want, err := c.Cookie(helpers.OAuthStateCookie)
	h.Cookies.ClearOAuthState(c)
	if err != nil || want == "" || c.Query("state") != want {
		response.Error[any](c, http.StatusBadRequest, "invalid oauth state", nil)
		return
	}
	if e := c.Query("error"); e != "" {
		response.Error[any](c, http.StatusUnauthorized, "google sign-in was denied", e)
		return
	}
	code := c.Query("code")
	if code == "" {
		response.Error[any](c, http.StatusBadRequest, "code is required", nil)
		return
	}

	id, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		helpers.LogError(h.Logger, "google exchange failed", err, nil)
		response.Error[any](c, http.StatusUnauthorized, "google sign-in failed", nil)
		return
	}
	u, pair, err := h.Svc.SignInWithOAuth(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Logger, err, "google sign-in failed")
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	if h.SuccessRedirect != "" {
		c.Redirect(http.StatusFound, h.SuccessRedirect)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(u)}, "login successful", nil)
}
