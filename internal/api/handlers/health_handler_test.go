package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		ping       error
		wantStatus int
		wantError  string
		wantState  string
	}{
		{"store reachable", nil, http.StatusOK, "", "ok"},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable, "Store unreachable", "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(pingerFunc(func(context.Context) error { return tt.ping }))
			rec := httptest.NewRecorder()
			h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Success bool         `json:"success"`
				Error   string       `json:"error"`
				Data    HealthReport `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode %q: %v", rec.Body.String(), err)
			}
			if body.Success != (tt.wantError == "") || body.Error != tt.wantError {
				t.Fatalf("envelope = %+v", body)
			}
			if body.Data.Status != tt.wantState {
				t.Fatalf("status field = %q, want %q", body.Data.Status, tt.wantState)
			}
		})
	}
}
