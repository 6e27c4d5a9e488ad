package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/rezervalabs/rezerva/internal/booking"
	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/libs/auth"
	"github.com/rezervalabs/rezerva/libs/httpx"
)

const (
	wireTimestamp = "2006-01-02T15:04:05"
	wireDate      = "2006-01-02"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeCoreError maps the booking taxonomy onto HTTP statuses. Anything
// untyped is a store failure and stays opaque to the caller.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, booking.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, booking.ErrValidation):
		http.Error(w, "invalid request", http.StatusBadRequest)
	case errors.Is(err, booking.ErrSlotUnavailable):
		http.Error(w, "requested slot is not available", http.StatusBadRequest)
	case errors.Is(err, booking.ErrStateConflict):
		http.Error(w, "conflict", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// caller is the authenticated identity extracted from the bearer token.
type caller struct {
	AccountID uuid.UUID
	Role      model.Role
}

// requireCaller rejects unauthenticated requests and requests whose token
// carries an unparsable subject or role.
func requireCaller(w http.ResponseWriter, r *http.Request) (caller, bool) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return caller{}, false
	}
	return callerFromClaims(w, claims)
}

// requireRole additionally pins the caller to one role.
func requireRole(w http.ResponseWriter, r *http.Request, role model.Role) (caller, bool) {
	c, ok := requireCaller(w, r)
	if !ok {
		return caller{}, false
	}
	if c.Role != role {
		http.Error(w, "forbidden", http.StatusForbidden)
		return caller{}, false
	}
	return c, true
}

func callerFromClaims(w http.ResponseWriter, claims *auth.Claims) (caller, bool) {
	accountID, err := uuid.Parse(claims.Sub)
	if err != nil {
		http.Error(w, "invalid token subject", http.StatusUnauthorized)
		return caller{}, false
	}
	role, err := model.ParseRole(claims.Role)
	if err != nil {
		http.Error(w, "invalid token role", http.StatusUnauthorized)
		return caller{}, false
	}
	return caller{AccountID: accountID, Role: role}, true
}
