package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/google/uuid"
)

// Session represents a user session. Only a hash of the refresh token
// is stored.
type Session struct {
	ID               string     `db:"id"`
	UserID           string     `db:"user_id"`
	RefreshTokenHash string     `db:"refresh_token_hash"`
	UserAgent        *string    `db:"user_agent"`
	IPAddress        *string    `db:"ip_address"`
	ExpiresAt        time.Time  `db:"expires_at"`
	CreatedAt        time.Time  `db:"created_at"`
	LastUsedAt       time.Time  `db:"last_used_at"`
	RevokedAt        *time.Time `db:"revoked_at"`
}

const sessionColumns = `id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, created_at, last_used_at, revoked_at`

// SessionRepository handles session persistence
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// NewSessionID generates a session ID
func NewSessionID() string {
	return uuid.New().String()
}

// CreateWithID creates a new session with a specific ID
func (r *SessionRepository) CreateWithID(ctx context.Context, id, userID, refreshToken string, expiresAt time.Time, userAgent, ipAddress string) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: HashToken(refreshToken),
		UserAgent:        optional(userAgent),
		IPAddress:        optional(ipAddress),
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		LastUsedAt:       now,
	}

	query := `
		INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Conn(ctx).ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
		session.LastUsedAt,
	)
	if err != nil {
		return nil, database.MapError(err, "session")
	}

	return session, nil
}

// GetByRefreshToken gets a live session by refresh token
func (r *SessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE refresh_token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()`
	if err := r.db.Conn(ctx).GetContext(ctx, &session, query, HashToken(refreshToken)); err != nil {
		return nil, database.MapError(err, "session")
	}
	return &session, nil
}

// UpdateRefreshTokenHash stores the hash of a rotated refresh token
func (r *SessionRepository) UpdateRefreshTokenHash(ctx context.Context, id string, newRefreshToken string) error {
	query := `UPDATE sessions SET refresh_token_hash = $1, last_used_at = NOW() WHERE id = $2`
	_, err := r.db.Conn(ctx).ExecContext(ctx, query, HashToken(newRefreshToken), id)
	return database.MapError(err, "session")
}

// Revoke revokes a session
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.db.Conn(ctx).ExecContext(ctx, query, id)
	return database.MapError(err, "session")
}

// IsActive reports whether the session exists and is neither revoked nor expired
func (r *SessionRepository) IsActive(ctx context.Context, id string) (bool, error) {
	var active bool
	query := `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1 AND revoked_at IS NULL AND expires_at > NOW())`
	if err := r.db.Conn(ctx).GetContext(ctx, &active, query, id); err != nil {
		return false, err
	}
	return active, nil
}

// HashToken returns the hex SHA-256 of a token
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
