package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, aexp, err := m.GenerateAccessToken("user-1", "sid-1", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), aexp, 2*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.True(t, claims.Verified)

	refresh, _, err := m.GenerateRefreshToken("user-1", "sid-1")
	require.NoError(t, err)
	rc, err := m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.False(t, rc.Verified)

	// tokens are bound to their own secret
	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("user-1", "sid", false)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestGenOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.Empty(t, strings.Trim(code, "0123456789"))
	}
	_, err := GenOTPCode(0)
	assert.Error(t, err)
}

func TestGenState(t *testing.T) {
	a, err := GenState()
	require.NoError(t, err)
	b, err := GenState()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("pikachu123")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "pikachu123"))
	assert.False(t, CompareHashAndPassword(hash, "raichu123"))
	assert.False(t, CompareHashAndPassword("", "pikachu123"))

	_, err = HashPassword(strings.Repeat("p", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestRedisJSONAndPrefixDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, RedisSetJSON(ctx, rdb, "search:char", payload{Name: "Charizard"}, time.Minute))
	require.NoError(t, RedisSetJSON(ctx, rdb, "search:pika", payload{Name: "Pikachu"}, time.Minute))
	require.NoError(t, rdb.Set(ctx, "other", "1", 0).Err())

	var got payload
	ok, err := RedisGetJSON(ctx, rdb, "search:char", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Charizard", got.Name)

	ok, err = RedisGetJSON(ctx, rdb, "search:missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := RedisDelPrefix(ctx, rdb, "search:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("other"))
	assert.False(t, mr.Exists("search:pika"))
}

func TestCookieManager(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	m := NewCookie("localhost", false)
	m.SetPair(c, "a", time.Now().Add(time.Hour), "r", time.Now().Add(24*time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessCookie, cookies[0].Name)
	assert.Equal(t, "a", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, RefreshCookie, cookies[1].Name)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	m.Clear(c)
	for _, ck := range w.Result().Cookies() {
		assert.Empty(t, ck.Value)
		assert.True(t, ck.MaxAge < 0)
	}
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bucket/avatars/u/1.png", PublicURL("bucket", "avatars/u/1.png"))
}
