package db

import (
	"context"

	"studypilot/internal/models"
)

// CreateUserParams are the fields for a new user row.
type CreateUserParams struct {
	Email    string
	Name     string
	GoogleID string
	Picture  string
}

const createUser = `
INSERT INTO users (email, name, google_id, picture)
VALUES ($1, $2, $3, $4)
RETURNING id, email, name, google_id, picture, created_at
`

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error) {
	var u models.User
	err := q.db.QueryRow(ctx, createUser, arg.Email, arg.Name, arg.GoogleID, arg.Picture).
		Scan(&u.ID, &u.Email, &u.Name, &u.GoogleID, &u.Picture, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, name, google_id, picture, created_at
FROM users
WHERE email = $1
`

// GetUserByEmail fetches a user by email, returning pgx.ErrNoRows if absent.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := q.db.QueryRow(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.GoogleID, &u.Picture, &u.CreatedAt)
	return u, err
}
