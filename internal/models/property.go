package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Property struct {
	ID          int64           `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Slug        string          `json:"slug" yaml:"slug"`
	OwnerID     int64           `json:"owner_id" yaml:"owner_id"`
	City        string          `json:"city" yaml:"city"`
	ListingType string          `json:"listing_type" yaml:"listing_type"` // sale, rent
	Price       decimal.Decimal `json:"price" yaml:"-"`
	IsPublished bool            `json:"is_published" yaml:"is_published"`
	CreatedAt   time.Time       `json:"created_at" yaml:"-"`
}

type Inquiry struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type Viewing struct {
	ID          int64     `json:"id"`
	PropertyID  int64     `json:"property_id"`
	UserID      int64     `json:"user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
}
