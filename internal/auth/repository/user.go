package repository

import (
	"context"
	"strings"
	"time"

	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
)

// User is an account that can sign in. The email doubles as the username.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsSuperuser  bool      `db:"is_superuser" json:"is_superuser"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Actor returns the user as the acting identity of a request
func (u *User) Actor() *actor.Actor {
	return &actor.Actor{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
	}
}

const userColumns = `id, email, username, first_name, last_name, password_hash, is_superuser, is_active, created_at, updated_at`

// UserRepository handles user persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. A taken email is a conflict.
func (r *UserRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, username, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_superuser, is_active, created_at, updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash,
	).Scan(&u.ID, &u.IsSuperuser, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return database.MapError(err, "user")
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.Conn(ctx).GetContext(ctx, &u, query, id); err != nil {
		return nil, database.MapError(err, "user")
	}
	return &u, nil
}

// GetByEmail gets a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.Conn(ctx).GetContext(ctx, &u, query, NormalizeEmail(email)); err != nil {
		return nil, database.MapError(err, "user")
	}
	return &u, nil
}

// ActorByID resolves an active user as an actor. Inactive users are
// reported as not found.
func (r *UserRepository) ActorByID(ctx context.Context, id string) (*actor.Actor, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, errors.NotFound("user")
	}
	return u.Actor(), nil
}
