package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserID        = "userID"
	CtxUserName      = "userName"
	CtxUserEmail     = "userEmail"
	CtxEmailVerified = "emailVerified"
)

const AdminKeyHeader = "X-Admin-Key"

func abort(c *gin.Context, status int, msg string, details any) {
	response.Error[any](c, status, msg, details)
	c.Abort()
}

// accessToken reads the access cookie, then an "Authorization: Bearer" header.
func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Auth validates the access token from the cookie or a Bearer header. With a
// session store the Redis session must exist and carry the token's session
// id; without one the token claims are trusted as-is.
func Auth(sessions *application.SessionStore, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		if !sessions.Enabled() {
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmailVerified, claims.Verified)
			c.Next()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "session not found", nil)
			return
		}
		if sess.SessionID != claims.SessionID {
			abort(c, http.StatusUnauthorized, "session expired", nil)
			return
		}
		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxUserName, sess.Name)
		c.Set(CtxUserEmail, sess.Email)
		c.Set(CtxEmailVerified, sess.EmailVerified)
		c.Next()
	}
}

// RequireVerified rejects users whose email is not verified yet. Must run after Auth.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxEmailVerified) {
			abort(c, http.StatusForbidden, "email not verified", nil)
			return
		}
		c.Next()
	}
}

// AdminKey guards operator routes with a shared key header. An empty key
// leaves the route open.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			abort(c, http.StatusUnauthorized, "invalid admin key", nil)
			return
		}
		c.Next()
	}
}
