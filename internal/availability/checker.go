// Package availability decides whether a room type can take another booking
// and derives per-night and occupancy figures from a set of bookings.
package availability

import (
	"fmt"
	"math"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/models"
)

// Policy selects what a booking consumes from a room type's quantity.
type Policy string

const (
	// PolicyGuestCount charges each booking its guest count.
	PolicyGuestCount Policy = "guest_count"
	// PolicyRoomCount charges each booking a single room.
	PolicyRoomCount Policy = "room_count"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyGuestCount, nil
	case PolicyGuestCount, PolicyRoomCount:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown capacity policy %q", s)
	}
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share a night.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

type Checker struct {
	policy Policy
}

func NewChecker(policy Policy) *Checker {
	if policy == "" {
		policy = PolicyGuestCount
	}
	return &Checker{policy: policy}
}

func (c *Checker) Policy() Policy {
	return c.policy
}

// Demand is the capacity a booking consumes under the checker's policy.
func (c *Checker) Demand(b *models.Booking) int {
	if c.policy == PolicyRoomCount {
		return 1
	}
	return b.GuestCount
}

// Overlapping filters existing down to the active bookings of the candidate's
// room type whose stay intersects the candidate's.
func (c *Checker) Overlapping(existing []*models.Booking, candidate *models.Booking) []*models.Booking {
	var out []*models.Booking
	for _, b := range existing {
		if b == nil || (b.ID != 0 && b.ID == candidate.ID) {
			continue
		}
		if b.RoomTypeID != candidate.RoomTypeID || !b.IsActive() {
			continue
		}
		if Overlaps(b.CheckIn, b.CheckOut, candidate.CheckIn, candidate.CheckOut) {
			out = append(out, b)
		}
	}
	return out
}

// Admit returns domain.ErrCapacityExceeded when the candidate's demand on top
// of every overlapping active booking exceeds the room type's quantity. The
// rule holds with no overlaps too, so a single oversized booking is refused.
func (c *Checker) Admit(roomType *models.RoomType, existing []*models.Booking, candidate *models.Booking) error {
	if roomType == nil {
		return fmt.Errorf("room type: %w", domain.ErrNotFound)
	}

	used := 0
	for _, b := range c.Overlapping(existing, candidate) {
		used += c.Demand(b)
	}

	if used+c.Demand(candidate) > roomType.Quantity {
		return fmt.Errorf("%w: %d of %d already taken, %d requested",
			domain.ErrCapacityExceeded, used, roomType.Quantity, c.Demand(candidate))
	}
	return nil
}

// Nightly returns booked and free capacity for each night starting at from.
func (c *Checker) Nightly(roomType *models.RoomType, bookings []*models.Booking, from time.Time, nights int) []*models.Availability {
	from = models.DateOnly(from)
	out := make([]*models.Availability, 0, nights)

	for i := 0; i < nights; i++ {
		night := from.AddDate(0, 0, i)
		next := night.AddDate(0, 0, 1)

		var booked int64
		for _, b := range bookings {
			if b.RoomTypeID != roomType.ID || !b.IsActive() {
				continue
			}
			if Overlaps(b.CheckIn, b.CheckOut, night, next) {
				booked += int64(c.Demand(b))
			}
		}

		free := int64(roomType.Quantity) - booked
		if free < 0 {
			free = 0
		}
		out = append(out, &models.Availability{
			Date:       night,
			RoomTypeID: roomType.ID,
			Booked:     booked,
			Available:  free,
		})
	}
	return out
}

// OccupancyRate is the percentage of room-nights in [from, from+days) taken by
// bookings, rounded to two decimals. Zero rooms yield zero.
func OccupancyRate(bookings []*models.Booking, totalRooms int64, from time.Time, days int) float64 {
	if totalRooms <= 0 || days <= 0 {
		return 0
	}

	start := models.DateOnly(from)
	end := start.AddDate(0, 0, days)

	booked := 0
	for _, b := range bookings {
		in, out := b.CheckIn, b.CheckOut
		if in.Before(start) {
			in = start
		}
		if out.After(end) {
			out = end
		}
		booked += models.NightsBetween(in, out)
	}

	rate := float64(booked) / float64(int64(days)*totalRooms) * 100
	return math.Round(rate*100) / 100
}
