package models

import "errors"

// Domain error taxonomy. Every operation failure surfaces as one of these,
// wrapped with context; handlers translate them to HTTP statuses with
// errors.Is.
var (
	ErrUnauthenticated = errors.New("missing or invalid credentials")
	ErrForbidden       = errors.New("forbidden")

	// ErrNotFound deliberately covers both true absence and ownership
	// mismatch so callers cannot probe for existence.
	ErrNotFound = errors.New("not found")

	ErrValidation      = errors.New("validation error")
	ErrInvalidRange    = errors.New("end time must be after start time")
	ErrVenueConflict   = errors.New("venue is already booked for the selected time")
	ErrMissingVenue    = errors.New("no venue specified to approve booking")
	ErrInvalidDecision = errors.New("decision must be Approved or Rejected")

	// ErrAlreadyDecided guards the terminal states: an Approved or Rejected
	// booking is never re-decided.
	ErrAlreadyDecided = errors.New("booking has already been decided")

	ErrHasApprovedBooking = errors.New("event has an approved booking")
	ErrDuplicateName      = errors.New("venue with this name already exists")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNotApproved = errors.New("booking is not approved")
)
