package repository

import (
	"context"
	"database/sql"
	"errors"

	"linkup/pkg/apperr"
	"linkup/pkg/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AuthRepository interface {
	CreateUser(ctx context.Context, name, email, passwordHash, avatar string) (models.User, error)
	// UserByEmail returns the user together with the stored credential hash.
	UserByEmail(ctx context.Context, email string) (models.User, string, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

type authRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(ctx context.Context, name, email, passwordHash, avatar string) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, avatar, created_at
	`, name, email, passwordHash, avatar).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperr.Validationf("email already registered")
		}
		return models.User{}, apperr.Persistence(err)
	}
	return u, nil
}

func (r *authRepository) UserByEmail(ctx context.Context, email string) (models.User, string, error) {
	var u models.User
	var hash string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, avatar, password, created_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &hash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", apperr.NotFoundf("user %s", email)
	}
	if err != nil {
		return models.User{}, "", apperr.Persistence(err)
	}
	return u, hash, nil
}

func (r *authRepository) UserByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, apperr.NotFoundf("user %s", id)
	}

	var u models.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, avatar, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFoundf("user %s", id)
	}
	if err != nil {
		return models.User{}, apperr.Persistence(err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
