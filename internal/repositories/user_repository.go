package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"chat-store/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository keeps the profile copy used for directory listings.
type UserRepository interface {
	Upsert(ctx context.Context, user models.User) (models.User, error)
	Get(ctx context.Context, userID string) (models.User, error)
	ListExcept(ctx context.Context, userID string) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert stores or refreshes a profile. The identity provider owns the record;
// the store only mirrors it.
func (r *UserRepo) Upsert(ctx context.Context, user models.User) (models.User, error) {
	var stored models.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, display_name, email, photo_url) VALUES ($1, $2, $3, $4)
         ON CONFLICT (id) DO UPDATE SET display_name=EXCLUDED.display_name, email=EXCLUDED.email, photo_url=EXCLUDED.photo_url
         RETURNING id, display_name, email, photo_url, created_at`,
		user.ID, user.DisplayName, user.Email, user.PhotoURL).StructScan(&stored)
	if err != nil {
		return models.User{}, storeError("upsert user", err)
	}
	return stored, nil
}

// Get fetches a profile by id.
func (r *UserRepo) Get(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, display_name, email, photo_url, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, storeError("get user", err)
	}
	return user, nil
}

// ListExcept returns every profile except the caller's, for contact listing.
func (r *UserRepo) ListExcept(ctx context.Context, userID string) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT id, display_name, email, photo_url, created_at FROM users WHERE id<>$1 ORDER BY display_name ASC`,
		userID)
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}
