package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/cheftrack/cheftrack-backend/internal/auth/jwt"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
)

// SessionChecker reports whether a session is still live
type SessionChecker interface {
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

type sessionKey struct{}

// SessionIDFromContext returns the session of the authenticated request
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// RequireAuth rejects requests without a valid access token and attaches
// the token's user as the request actor. When sessions is non-nil, tokens
// whose session has been revoked are rejected too.
func RequireAuth(manager *jwt.Manager, sessions SessionChecker, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.Error(w, errors.Unauthorized("authentication required"))
				return
			}

			claims, err := manager.ValidateAccessToken(token)
			if err != nil {
				httputil.Error(w, err)
				return
			}

			if sessions != nil {
				active, err := sessions.SessionActive(r.Context(), claims.SessionID)
				if err != nil {
					log.Error().Err(err).Str("session_id", claims.SessionID).Msg("session lookup failed")
					httputil.Error(w, errors.Internal("an unexpected error occurred"))
					return
				}
				if !active {
					httputil.Error(w, errors.Unauthorized("session has been revoked"))
					return
				}
			}

			role := "user"
			if claims.IsSuperuser {
				role = "superuser"
			}

			ctx := actor.WithActor(r.Context(), &actor.Actor{
				ID:          claims.UserID,
				FirstName:   claims.FirstName,
				LastName:    claims.LastName,
				Email:       claims.Email,
				IsSuperuser: claims.IsSuperuser,
			})
			ctx = httputil.WithUserContext(ctx, claims.UserID, claims.Email, role)
			ctx = context.WithValue(ctx, sessionKey{}, claims.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
