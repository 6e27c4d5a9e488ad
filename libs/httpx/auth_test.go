package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rezervalabs/rezerva/libs/auth"
)

func TestWithBearerAuth(t *testing.T) {
	secret := "test-secret"
	var seen *auth.Claims
	h := WithBearerAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	claims := auth.Claims{
		Sub:  "acc-1",
		Role: "user",
		Iat:  time.Now().Unix(),
		Exp:  time.Now().Add(time.Hour).Unix(),
	}
	token, err := auth.SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if seen == nil || seen.Sub != "acc-1" || seen.Role != "user" {
		t.Fatalf("claims not propagated: %+v", seen)
	}

	// No token: passes through with nil claims.
	seen = &auth.Claims{}
	reqAnon := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	rwAnon := httptest.NewRecorder()
	h.ServeHTTP(rwAnon, reqAnon)
	if rwAnon.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous request, got %d", rwAnon.Code)
	}
	if seen != nil {
		t.Fatalf("expected nil claims for anonymous request, got %+v", seen)
	}

	// Tampered token is rejected.
	reqBad := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	reqBad.Header.Set("Authorization", "Bearer "+token+"x")
	rwBad := httptest.NewRecorder()
	h.ServeHTTP(rwBad, reqBad)
	if rwBad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token, got %d", rwBad.Code)
	}
}
