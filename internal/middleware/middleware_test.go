package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/errs"
	"quill/internal/models"
)

const testSecret = "test-secret"

type fakeUsers map[uint]*models.User

func (f fakeUsers) GetUser(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errs.NotFound("User not found")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(users UserLoader) *gin.Engine {
	r := gin.New()
	r.Use(LoadPrincipal(testSecret, users))
	r.GET("/whoami", func(c *gin.Context) {
		p := Principal(c)
		if p == nil {
			c.JSON(http.StatusOK, gin.H{"role": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	r.GET("/private", AuthRequired(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoadPrincipal(t *testing.T) {
	users := fakeUsers{7: {ID: 7, Name: "ed", Role: models.RoleAdmin}}
	r := newEngine(users)

	w := get(r, "/whoami", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":""}`, w.Body.String())

	// The stored role wins over the claim.
	token, err := SignToken(testSecret, 7, models.RoleUser, time.Hour)
	require.NoError(t, err)
	w = get(r, "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"admin"}`, w.Body.String())
}

func TestLoadPrincipalRejectsBadTokens(t *testing.T) {
	r := newEngine(fakeUsers{7: {ID: 7, Role: models.RoleUser}})

	wrongKey, err := SignToken("other-secret", 7, models.RoleUser, time.Hour)
	require.NoError(t, err)
	expired, err := SignToken(testSecret, 7, models.RoleUser, -time.Minute)
	require.NoError(t, err)
	unknown, err := SignToken(testSecret, 8, models.RoleUser, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "not.a.token",
		"wrong key": wrongKey,
		"expired":   expired,
		"unknown":   unknown,
	} {
		w := get(r, "/whoami", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Contains(t, w.Body.String(), `"success":false`, name)
	}
}

func TestAuthRequired(t *testing.T) {
	r := newEngine(fakeUsers{1: {ID: 1, Role: models.RoleUser}})

	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "").Code)

	token, err := SignToken(testSecret, 1, models.RoleUser, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, get(r, "/private", token).Code)
}

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.POST("/limited", RateLimitByIP(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.2"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := get(r, "/ping", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), "path=/ping")
	assert.Contains(t, buf.String(), "status=200")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}
