package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/rs/zerolog/hlog"
)

// TokenCookie is the cookie set on login and accepted in place of the
// Authorization header.
const TokenCookie = "token"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID    string
	Name      string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

type contextKey string

const identityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// UserLookup resolves the user a token was issued to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// Middleware rejects requests without a valid, unrevoked token for an
// existing user and attaches the caller's Identity to the rest.
func Middleware(issuer *Issuer, users UserLookup, revoker Revoker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				respond.Error(w, r, apperror.Unauthorized("Not authorized to access this route"))
				return
			}

			claims, err := issuer.ValidateJWT(tokenStr)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("Rejected auth token")
				respond.Error(w, r, apperror.Unauthorized("Not authorized to access this route"))
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				respond.Error(w, r, apperror.Internal(err))
				return
			}
			if revoked {
				respond.Error(w, r, apperror.Unauthorized("Token has been revoked"))
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if apperror.KindOf(err) == apperror.KindNotFound {
					respond.Error(w, r, apperror.Unauthorized("User no longer exists"))
					return
				}
				respond.Error(w, r, err)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:    user.ID,
				Name:      user.Name,
				Email:     user.Email,
				TokenID:   claims.ID,
				ExpiresAt: claims.ExpiresAt.Time,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest reads the bearer token from the Authorization header,
// falling back to the token cookie.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
