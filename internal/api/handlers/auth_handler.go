package handlers

import (
	"net/http"
	"time"

	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/auth"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/services"
	"github.com/isdelr/tasktrack-be/internal/validation"
	"github.com/rs/zerolog/hlog"
)

// AuthHandler handles signup, login and the session of the current user.
type AuthHandler struct {
	service      services.UserServiceProvider
	issuer       *auth.Issuer
	revoker      auth.Revoker
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the login
// cookie Secure, which production deployments behind TLS want.
func NewAuthHandler(service services.UserServiceProvider, issuer *auth.Issuer, revoker auth.Revoker, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, issuer: issuer, revoker: revoker, secureCookie: secureCookie}
}

// Signup handles new user registration.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, _ := validation.Payload[models.SignupRequest](r.Context())

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	token, _, err := h.issuer.GenerateJWT(user)
	if err != nil {
		respond.Error(w, r, apperror.Internal(err))
		return
	}
	hlog.FromRequest(r).Info().Str("user_id", user.ID).Msg("User registered")
	respond.Token(w, http.StatusCreated, token, user)
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, _ := validation.Payload[models.LoginRequest](r.Context())

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		hlog.FromRequest(r).Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		respond.Error(w, r, err)
		return
	}

	token, claims, err := h.issuer.GenerateJWT(user)
	if err != nil {
		respond.Error(w, r, apperror.Internal(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Expires:  claims.ExpiresAt.Time,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	respond.Token(w, http.StatusOK, token, user)
}

// Logout revokes the token the request was made with and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	if err := h.revoker.Revoke(r.Context(), id.TokenID, id.ExpiresAt); err != nil {
		respond.Error(w, r, apperror.Internal(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	respond.Success(w, http.StatusOK, struct{}{})
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(r.Context(), identity(r).UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, user)
}

// identity returns the caller attached by auth.Middleware.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
