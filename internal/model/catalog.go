package model

import "fmt"

// SlotGridMinutes is the booking grid granularity. Service durations must be
// positive multiples of it so slot boundaries line up across services.
const SlotGridMinutes = 15

// Service is a bookable offering. IsActive is derived state: true iff at
// least one employee is assigned.
type Service struct {
	ID              int64
	CompanyID       int64
	SubcategoryID   int64
	Name            string
	Description     string
	Price           float64
	DurationMinutes int
	IsActive        bool
}

func ValidateDuration(minutes int) error {
	if minutes <= 0 || minutes%SlotGridMinutes != 0 {
		return fmt.Errorf("duration_minutes must be a positive multiple of %d", SlotGridMinutes)
	}
	return nil
}

type Employee struct {
	ID          int64
	CompanyID   int64
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// Subcategory groups a company's services.
type Subcategory struct {
	ID        int64
	CompanyID int64
	Name      string
}
