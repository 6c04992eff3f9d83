package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/models"
)

type fakeUsers map[string]models.User

func (f fakeUsers) GetUserByID(_ context.Context, id string) (models.User, error) {
	if id == "broken" {
		return models.User{}, apperror.Internal(errors.New("store down"))
	}
	u, ok := f[id]
	if !ok {
		return models.User{}, apperror.NotFound("User not found")
	}
	return u, nil
}

func newTestIssuer(now time.Time) *Issuer {
	iss := NewIssuer("test-secret", time.Hour)
	iss.now = func() time.Time { return now }
	return iss
}

func TestGenerateAndValidate(t *testing.T) {
	now := time.Now()
	iss := newTestIssuer(now)

	token, claims, err := iss.GenerateJWT(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("token id should be set")
	}

	got, err := iss.ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if got.UserID != "u1" || got.ID != claims.ID {
		t.Fatalf("claims = %+v", got)
	}
}

func TestValidateRejects(t *testing.T) {
	now := time.Now()
	iss := newTestIssuer(now)
	token, _, err := iss.GenerateJWT(models.User{ID: "u1"})
	if err != nil {
		t.Fatal(err)
	}

	expired := newTestIssuer(now.Add(2 * time.Hour))
	if _, err := expired.ValidateJWT(token); err == nil {
		t.Fatal("expired token accepted")
	}

	other := NewIssuer("other-secret", time.Hour)
	if _, err := other.ValidateJWT(token); err == nil {
		t.Fatal("token signed with another key accepted")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.ValidateJWT(unsigned); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	users := fakeUsers{"u1": {ID: "u1", Name: "Ada", Email: "ada@example.com"}}
	revoker := NewMemoryRevoker()

	valid, _, _ := iss.GenerateJWT(models.User{ID: "u1"})
	ghost, _, _ := iss.GenerateJWT(models.User{ID: "ghost"})
	broken, _, _ := iss.GenerateJWT(models.User{ID: "broken"})
	revokedTok, revokedClaims, _ := iss.GenerateJWT(models.User{ID: "u1"})
	if err := revoker.Revoke(context.Background(), revokedClaims.ID, revokedClaims.ExpiresAt.Time); err != nil {
		t.Fatal(err)
	}

	var seen Identity
	handler := Middleware(iss, users, revoker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing")
		}
		seen = id
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{"bearer", "Bearer " + valid, "", http.StatusOK},
		{"cookie", "", valid, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, "", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", "", http.StatusUnauthorized},
		{"user gone", "Bearer " + ghost, "", http.StatusUnauthorized},
		{"revoked", "Bearer " + revokedTok, "", http.StatusUnauthorized},
		{"store failure", "Bearer " + broken, "", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = Identity{}
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK && (seen.UserID != "u1" || seen.Email != "ada@example.com") {
				t.Fatalf("identity = %+v", seen)
			}
		})
	}
}

func TestMemoryRevokerExpiry(t *testing.T) {
	now := time.Now()
	m := NewMemoryRevoker()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Revoke(ctx, "a", now.Add(time.Minute))
	m.Revoke(ctx, "old", now.Add(-time.Minute))

	if ok, _ := m.IsRevoked(ctx, "a"); !ok {
		t.Fatal("a should be revoked")
	}
	if ok, _ := m.IsRevoked(ctx, "old"); ok {
		t.Fatal("already-expired token should not be tracked")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := m.IsRevoked(ctx, "a"); ok {
		t.Fatal("revocation should lapse once the token expires")
	}
}
