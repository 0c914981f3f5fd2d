package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Hotel struct {
	ID         int64     `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	City       string    `json:"city" yaml:"city"`
	Country    string    `json:"country" yaml:"country"`
	StarRating int       `json:"star_rating" yaml:"star_rating"`
	ManagerID  int64     `json:"manager_id" yaml:"manager_id"`
	PropertyID *int64    `json:"property_id,omitempty" yaml:"property_id"`
	IsActive   bool      `json:"is_active" yaml:"is_active"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
}

// RoomType is a bookable room category. Quantity is fixed capacity and is
// never decremented by bookings.
type RoomType struct {
	ID            int64           `json:"id" yaml:"id"`
	HotelID       int64           `json:"hotel_id" yaml:"hotel_id"`
	Name          string          `json:"name" yaml:"name"`
	Quantity      int             `json:"quantity" yaml:"quantity"`
	PricePerNight decimal.Decimal `json:"price_per_night" yaml:"-"`
	MaxGuests     int             `json:"max_guests" yaml:"max_guests"`
	IsAvailable   bool            `json:"is_available" yaml:"is_available"`
}
