package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"quill/internal/config"
	"quill/internal/db/dbtest"
	"quill/internal/logging"
	"quill/internal/middleware"
	"quill/internal/models"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// apiServer is an in-process server over a private database.
type apiServer struct {
	db      *gorm.DB
	handler http.Handler
	tokens  map[string]string
	users   map[string]*models.User
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Env: config.EnvProduction, ClientURLs: []string{"http://localhost:4321"}},
		Auth:     config.AuthConfig{JWTSecret: testSecret},
		Comments: config.CommentsConfig{RateLimit: 1000},
	}
}

func newAPIServer(t testing.TB, cfg *config.Config) *apiServer {
	t.Helper()
	gdb := dbtest.Open(t)
	return &apiServer{
		db:      gdb,
		handler: New(cfg, gdb, logging.NewWithWriter(io.Discard, "error")),
		tokens:  map[string]string{},
		users:   map[string]*models.User{},
	}
}

// addUser persists a user and keeps a signed token for it under name.
func (s *apiServer) addUser(name string, role models.Role) (*models.User, error) {
	u := &models.User{Name: name, Email: name + "@example.com", Role: role}
	if err := s.db.Create(u).Error; err != nil {
		return nil, err
	}
	token, err := middleware.SignToken(testSecret, u.ID, role, time.Hour)
	if err != nil {
		return nil, err
	}
	s.users[name] = u
	s.tokens[name] = token
	return u, nil
}

type apiResponse struct {
	Code int
	Body map[string]any
	Raw  string
}

// do sends a request as user (empty for anonymous) with an optional JSON body.
func (s *apiServer) do(method, path, user string, body any) apiResponse {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token := s.tokens[user]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	res := apiResponse{Code: w.Code, Raw: w.Body.String()}
	_ = json.Unmarshal(w.Body.Bytes(), &res.Body)
	return res
}

func (r apiResponse) data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

func (r apiResponse) list() []any {
	d, _ := r.Body["data"].([]any)
	return d
}

func (r apiResponse) id() uint {
	v, _ := r.data()["id"].(float64)
	return uint(v)
}
