package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"linkup/pkg/apperr"
	"linkup/pkg/models"
	"linkup/pkg/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 72 * time.Hour

// AuthService issues the identity tokens the post routes consume. The feed
// core never touches credentials; it only ever sees the user id the
// middleware extracts from a token.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

type authService struct {
	repo      repository.AuthRepository
	jwtSecret string
}

func NewAuthService(repo repository.AuthRepository) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-key-change-in-production"
	}
	return &authService{repo: repo, jwtSecret: secret}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" {
		return models.AuthResponse{}, apperr.Validationf("name is required")
	}
	if !strings.Contains(email, "@") {
		return models.AuthResponse{}, apperr.Validationf("invalid email")
	}
	if len(req.Password) < 6 {
		return models.AuthResponse{}, apperr.Validationf("password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.AuthResponse{}, apperr.Persistence(err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, string(hashed), strings.TrimSpace(req.Avatar))
	if err != nil {
		return models.AuthResponse{}, err
	}

	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return models.AuthResponse{}, apperr.Validationf("email and password are required")
	}

	user, hash, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.AuthResponse{}, apperr.Unauthorizedf("invalid email or password")
		}
		return models.AuthResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return models.AuthResponse{}, apperr.Unauthorizedf("invalid email or password")
	}

	return s.respond(user)
}

func (s *authService) UserByID(ctx context.Context, id string) (models.User, error) {
	return s.repo.UserByID(ctx, id)
}

func (s *authService) respond(user models.User) (models.AuthResponse, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	})

	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return models.AuthResponse{}, apperr.Persistence(err)
	}

	return models.AuthResponse{Token: signed, User: user}, nil
}
