package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the actor may view or modify the booking.
// Non-admin users only reach their own bookings.
func (a Actor) CanAccess(b *Booking) bool {
	return a.IsAdmin() || a.UserID == b.UserID
}
