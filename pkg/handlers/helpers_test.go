package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"linkup/pkg/cache"
	"linkup/pkg/middleware"
	"linkup/pkg/models"
	"linkup/pkg/repository"
	"linkup/pkg/server"
	"linkup/pkg/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	app  *fiber.App
	repo *repository.Memory
	dir  string
}

// newTestEnv wires the full stack over the in-memory repository and cache,
// with the same routing as cmd/server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	repo := repository.NewMemory()
	store := cache.NewMemory()
	dir := t.TempDir()

	auth := NewAuth(services.NewAuthService(repo))
	posts := NewPosts(services.NewPostService(repo, store), services.NewFeedService(repo, store), dir)

	app := server.NewApp("linkup-test")

	authGroup := app.Group("/auth")
	authGroup.Post("/register", auth.Register)
	authGroup.Post("/login", auth.Login)
	authGroup.Get("/me", middleware.AuthMiddleware, auth.Me)

	postGroup := app.Group("/posts", middleware.AuthMiddleware)
	postGroup.Post("/", posts.Create)
	postGroup.Get("/", posts.List)
	postGroup.Get("/user/:userId", posts.ListByUser)
	postGroup.Put("/like/:id", posts.ToggleLike)
	postGroup.Post("/comment/:id", posts.Comment)
	postGroup.Put("/:id", posts.Edit)
	postGroup.Delete("/:id", posts.Delete)

	return &testEnv{app: app, repo: repo, dir: dir}
}

func (e *testEnv) user(t *testing.T, name, email string) (models.User, string) {
	t.Helper()
	u, err := e.repo.CreateUser(context.Background(), name, email, "hash", "")
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"name":    u.Name,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return u, signed
}

func (e *testEnv) request(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
