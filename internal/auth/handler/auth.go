package handler

import (
	"net"
	"net/http"

	"github.com/cheftrack/cheftrack-backend/internal/auth/service"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	service *service.AuthService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the user API on r. Logout and profile require a bearer token.
func Routes(r chi.Router, svc *service.AuthService, requireAuth func(http.Handler) http.Handler, log *logger.Logger) {
	h := NewAuthHandler(svc, log)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.Profile)
		})
	})
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	response, err := h.service.Register(r.Context(), &req, clientInfo(r))
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSONWithMessage(w, http.StatusCreated, "Account created successfully!", response)
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	response, err := h.service.Login(r.Context(), &req, clientInfo(r))
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, response)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tokens)
}

// Logout revokes the session of the bearer token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), SessionIDFromContext(r.Context())); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.NoContent(w)
}

// Profile returns the current user
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	a := actor.FromContext(r.Context())
	if a == nil {
		httputil.Error(w, errors.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.Profile(r.Context(), a.ID)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, user)
}

func clientInfo(r *http.Request) service.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return service.ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}
