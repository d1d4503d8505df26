package service

import (
	"context"
	"strings"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/auth/jwt"
	"github.com/cheftrack/cheftrack-backend/internal/auth/repository"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and session lifecycle
type AuthService struct {
	db         *database.DB
	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	jwtManager *jwt.Manager
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(db *database.DB, users *repository.UserRepository, sessions *repository.SessionRepository, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		db:         db,
		users:      users,
		sessions:   sessions,
		jwtManager: jwtManager,
		logger:     log.WithComponent("auth"),
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,max=300"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresAt    time.Time        `json:"expires_at"`
	TokenType    string           `json:"token_type"`
	User         *repository.User `json:"user"`
}

// ClientInfo describes where a session was opened from
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// SplitFullName splits a full name into first name and the remainder
func SplitFullName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Register creates an account and opens a session for it
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest, client ClientInfo) (*AuthResponse, error) {
	req.Email = repository.NormalizeEmail(req.Email)
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	email := req.Email
	first, last := SplitFullName(req.FullName)
	user := &repository.User{
		Email:        email,
		Username:     email,
		FirstName:    first,
		LastName:     last,
		PasswordHash: string(hash),
	}

	var resp *AuthResponse
	err = s.db.WithTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		resp, err = s.openSession(ctx, user, client)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return resp, nil
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, client ClientInfo) (*AuthResponse, error) {
	req.Email = repository.NormalizeEmail(req.Email)
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, errors.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	return s.openSession(ctx, user, client)
}

func (s *AuthService) openSession(ctx context.Context, user *repository.User, client ClientInfo) (*AuthResponse, error) {
	sessionID := repository.NewSessionID()

	tokens, err := s.jwtManager.GenerateTokenPair(tokenInfo(user), sessionID)
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}

	expiresAt := time.Now().Add(s.jwtManager.GetRefreshExpiry())
	if _, err := s.sessions.CreateWithID(ctx, sessionID, user.ID, tokens.RefreshToken, expiresAt, client.UserAgent, client.IPAddress); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to create session")
		return nil, errors.Internal("failed to create session")
	}

	return &AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		TokenType:    tokens.TokenType,
		User:         user,
	}, nil
}

// Refresh exchanges a refresh token for a new token pair. The stored
// token hash is rotated so a refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("invalid session")
		}
		return nil, err
	}
	if session.ID != claims.SessionID {
		return nil, errors.Unauthorized("invalid session")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("invalid session")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.Unauthorized("account is disabled")
	}

	tokens, err := s.jwtManager.GenerateTokenPair(tokenInfo(user), session.ID)
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}

	if err := s.sessions.UpdateRefreshTokenHash(ctx, session.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return tokens, nil
}

// Logout revokes a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.Unauthorized("authentication required")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to revoke session")
		return err
	}
	return nil
}

// SessionActive reports whether a session is still usable
func (s *AuthService) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.IsActive(ctx, sessionID)
}

// Profile returns the current user
func (s *AuthService) Profile(ctx context.Context, userID string) (*repository.User, error) {
	return s.users.GetByID(ctx, userID)
}

func tokenInfo(u *repository.User) *jwt.UserInfo {
	return &jwt.UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsSuperuser: u.IsSuperuser,
	}
}
