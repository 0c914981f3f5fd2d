package models

import "time"

type Availability struct {
	Date       time.Time `json:"date"`
	RoomTypeID int64     `json:"room_type_id"`
	Booked     int64     `json:"booked"`
	Available  int64     `json:"available"`
}

// DateOnly returns the UTC midnight of t's calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// NightsBetween counts calendar nights in [from, to). Negative ranges give 0.
func NightsBetween(from, to time.Time) int {
	n := int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}
