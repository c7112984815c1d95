package domain

import "errors"

// Business-rule failures surfaced to the transport layer. Handlers map these
// to HTTP statuses; anything else is treated as a store/infra failure (500).
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrSoldOut            = errors.New("event is sold out")
	ErrHasAttendees       = errors.New("event has registered users")
	ErrTooCloseToDate     = errors.New("event is too close to its date")
	ErrNotCreator         = errors.New("only the event creator may cancel")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)
