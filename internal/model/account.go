package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleCompany Role = "company"
)

func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, nil
	case RoleCompany:
		return RoleCompany, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

type Account struct {
	ID               uuid.UUID
	Email            string
	PhoneNumber      string
	PasswordHash     string
	Role             Role
	RegistrationDate time.Time
}

// Client is the booking-side profile of a user account.
type Client struct {
	ID        int64
	AccountID uuid.UUID
	FirstName string
	LastName  string
}

// Company is the provider-side profile of a company account.
type Company struct {
	ID          int64
	AccountID   uuid.UUID
	Name        string
	City        string
	PostalCode  string
	Street      string
	Description string
}
