package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to BookingStatus
	}{
		{BookingStatusRequested, BookingStatusConfirmed},
		{BookingStatusRequested, BookingStatusCancelled},
		{BookingStatusConfirmed, BookingStatusCompleted},
		{BookingStatusCompleted, BookingStatusConfirmed},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	forbidden := []struct {
		from, to BookingStatus
	}{
		{BookingStatusRequested, BookingStatusCompleted},
		{BookingStatusCompleted, BookingStatusRequested},
		{BookingStatusConfirmed, BookingStatusRequested},
		{BookingStatusCancelled, BookingStatusConfirmed},
		{BookingStatusCancelled, BookingStatusRequested},
		{BookingStatusConfirmed, BookingStatusConfirmed},
	}
	for _, tc := range forbidden {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be refused", tc.from, tc.to)
	}
}

func TestBookingActive(t *testing.T) {
	for _, status := range []BookingStatus{BookingStatusRequested, BookingStatusConfirmed, BookingStatusCompleted} {
		assert.True(t, Booking{Status: status}.Active(), "%s is active", status)
	}
	assert.False(t, Booking{Status: BookingStatusCancelled}.Active())
}
