package services

import (
	"context"
	"errors"
	"testing"

	"linkup/pkg/apperr"
	"linkup/pkg/models"
	"linkup/pkg/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	register := models.RegisterRequest{Name: "Ann", Email: "Ann@Example.com", Password: "secret1"}

	t.Run("register issues a token with the user id", func(t *testing.T) {
		svc := NewAuthService(repository.NewMemory())
		resp, err := svc.Register(ctx, register)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", resp.User.Email) // normalized
		assert.NotEmpty(t, resp.Token)

		token, err := jwt.ParseWithClaims(resp.Token, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(*jwt.MapClaims)
		assert.Equal(t, resp.User.ID, (*claims)["user_id"])
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc := NewAuthService(repository.NewMemory())
		_, err := svc.Register(ctx, register)
		require.NoError(t, err)

		_, err = svc.Register(ctx, register)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("short password is rejected", func(t *testing.T) {
		svc := NewAuthService(repository.NewMemory())
		_, err := svc.Register(ctx, models.RegisterRequest{Name: "Ann", Email: "a@b.c", Password: "123"})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("login succeeds with the right password only", func(t *testing.T) {
		svc := NewAuthService(repository.NewMemory())
		_, err := svc.Register(ctx, register)
		require.NoError(t, err)

		resp, err := svc.Login(ctx, models.LoginRequest{Email: "ann@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "Ann", resp.User.Name)

		_, err = svc.Login(ctx, models.LoginRequest{Email: "ann@example.com", Password: "wrong"})
		assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

		_, err = svc.Login(ctx, models.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
		assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	})
}
