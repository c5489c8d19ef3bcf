package domain

import "errors"

// Sentinel errors shared by the repositories and services. Handlers
// translate them into HTTP status codes.

// ErrFlightNotFound is returned when a referenced flight does not exist.
var ErrFlightNotFound = errors.New("flight not found")

// ErrBookingNotFound is returned when a referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidRequest is returned for malformed input: non-positive seat
// counts, passenger lists that do not match the seat count, birth dates
// in the future.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotEnoughSeats is returned when a reservation asks for more seats
// than the flight currently has. It depends on live data, not on the
// request shape, so callers should surface it as a conflict.
var ErrNotEnoughSeats = errors.New("not enough seats available")

// ErrInvalidTransition is returned when a status change is not permitted
// from the booking's current status.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// ErrInvalidOperation is returned for structurally valid but disallowed
// actions, such as deleting a booking that is no longer CREATED.
var ErrInvalidOperation = errors.New("operation not allowed for booking status")

// ErrAccessDenied is returned when the actor does not own the target
// booking and is not an admin.
var ErrAccessDenied = errors.New("access denied")

// ErrEmailTaken is returned on registration with an already used email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned on login with a wrong email/password.
var ErrInvalidCredentials = errors.New("invalid credentials")
