package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBooking_CanTransition(t *testing.T) {
	testCases := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		wantErr error
	}{
		{name: "created to confirmed", from: BookingStatusCreated, to: BookingStatusConfirmed},
		{name: "created to cancelled", from: BookingStatusCreated, to: BookingStatusCancelled},
		{name: "confirmed to cancelled", from: BookingStatusConfirmed, to: BookingStatusCancelled},
		{name: "cancelled is terminal", from: BookingStatusCancelled, to: BookingStatusConfirmed, wantErr: ErrInvalidTransition},
		{name: "no cancel twice", from: BookingStatusCancelled, to: BookingStatusCancelled, wantErr: ErrInvalidTransition},
		{name: "no confirm twice", from: BookingStatusConfirmed, to: BookingStatusConfirmed, wantErr: ErrInvalidTransition},
		{name: "no way back to created", from: BookingStatusConfirmed, to: BookingStatusCreated, wantErr: ErrInvalidTransition},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Booking{Status: tc.from}
			err := b.CanTransition(tc.to)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestBooking_CanDelete(t *testing.T) {
	assert.NoError(t, (&Booking{Status: BookingStatusCreated}).CanDelete())
	assert.ErrorIs(t, (&Booking{Status: BookingStatusConfirmed}).CanDelete(), ErrInvalidOperation)
	assert.ErrorIs(t, (&Booking{Status: BookingStatusCancelled}).CanDelete(), ErrInvalidOperation)
}

func TestReleasesSeats(t *testing.T) {
	assert.True(t, ReleasesSeats(BookingStatusCancelled))
	assert.False(t, ReleasesSeats(BookingStatusConfirmed))
	assert.False(t, ReleasesSeats(BookingStatusCreated))
}

func TestBookingStatus_Valid(t *testing.T) {
	assert.True(t, BookingStatusCreated.Valid())
	assert.True(t, BookingStatusConfirmed.Valid())
	assert.True(t, BookingStatusCancelled.Valid())
	assert.False(t, BookingStatus("EXPIRED").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestActor_CanAccess(t *testing.T) {
	booking := &Booking{UserID: 7}
	assert.True(t, Actor{UserID: 7, Role: RoleUser}.CanAccess(booking))
	assert.False(t, Actor{UserID: 8, Role: RoleUser}.CanAccess(booking))
	assert.True(t, Actor{UserID: 1, Role: RoleAdmin}.CanAccess(booking))
}
