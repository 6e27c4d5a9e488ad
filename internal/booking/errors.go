package booking

import "errors"

// Failure taxonomy shared by the scheduling core and its storage
// implementations. Handlers map these to HTTP statuses; nothing in this
// package knows about HTTP.
var (
	// ErrNotFound: the addressed entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized: the acting account has no matching profile or does
	// not own the addressed entity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation: malformed input (bad duration, bad time window).
	ErrValidation = errors.New("validation failed")

	// ErrSlotUnavailable: the requested start time is not currently
	// bookable, including the case where the employee does not serve the
	// requested service.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrStateConflict: a status transition out of a terminal state, or a
	// concurrent booking that lost the race at insert time.
	ErrStateConflict = errors.New("state conflict")

	// ErrPersistence: the store failed for reasons unrelated to the request.
	ErrPersistence = errors.New("persistence failure")
)
