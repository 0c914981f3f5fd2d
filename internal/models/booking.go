package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID              int64           `json:"id"`
	RoomTypeID      int64           `json:"room_type_id"`
	RoomTypeName    string          `json:"room_type_name,omitempty"`
	HotelID         int64           `json:"hotel_id,omitempty"`
	UserID          int64           `json:"user_id"`
	CheckIn         time.Time       `json:"check_in_date"`
	CheckOut        time.Time       `json:"check_out_date"`
	GuestCount      int             `json:"guest_count"`
	Status          string          `json:"status"` // pending, confirmed, cancelled, completed
	TotalPrice      decimal.Decimal `json:"total_price"`
	SpecialRequests string          `json:"special_requests,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int64           `json:"version"`
}

// Nights is the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// IsActive reports whether the booking holds inventory.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

var bookingTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
// Cancelled and completed are terminal.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
