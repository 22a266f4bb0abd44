package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestIssueAndValidate(t *testing.T) {
	s := NewService("secret", time.Hour)
	token, err := s.IssueToken("sess_1", "ada")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.Authorize(token, "sess_1")
	if err != nil {
		t.Fatal(err)
	}
	if claims.SessionID() != "sess_1" || claims.Name != "ada" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := s.Authorize(token, "sess_2"); !errors.Is(err, ErrWrongSession) {
		t.Errorf("other session: got %v", err)
	}
	if _, err := NewService("other", time.Hour).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v", err)
	}
	if _, err := s.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: got %v", err)
	}
}

func TestTokenExpires(t *testing.T) {
	s := NewService("secret", time.Minute)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }
	token, err := s.IssueToken("sess_1", "")
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}
}

func TestSessionMiddleware(t *testing.T) {
	s := NewService("secret", time.Hour)
	token, _ := s.IssueToken("sess_1", "ada")
	other, _ := s.IssueToken("sess_2", "bob")

	r := mux.NewRouter()
	r.Handle("/api/sessions/{id}", s.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ClaimsFromContext(r.Context()).Name))
	})))

	tests := []struct {
		name   string
		url    string
		header string
		status int
	}{
		{"bearer", "/api/sessions/sess_1", "Bearer " + token, http.StatusOK},
		{"query", "/api/sessions/sess_1?token=" + token, "", http.StatusOK},
		{"missing", "/api/sessions/sess_1", "", http.StatusUnauthorized},
		{"malformed header", "/api/sessions/sess_1", "Token " + token, http.StatusUnauthorized},
		{"invalid", "/api/sessions/sess_1", "Bearer nope", http.StatusUnauthorized},
		{"other session", "/api/sessions/sess_1", "Bearer " + other, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, expected %d: %s", rec.Code, tt.status, rec.Body)
			}
			if tt.status == http.StatusOK && rec.Body.String() != "ada" {
				t.Errorf("body = %q", rec.Body)
			}
		})
	}
}

func TestInvite(t *testing.T) {
	s := NewService("secret", time.Hour)
	h := NewHandler(s)
	r := mux.NewRouter()
	r.HandleFunc("/api/sessions/{id}/tokens", h.Invite)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess_1/tokens", strings.NewReader(`{"name":"bob"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"sessionId":"sess_1"`) {
		t.Errorf("body = %s", rec.Body)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/sess_1/tokens", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty name: status = %d", rec.Code)
	}
}
