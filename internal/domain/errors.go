package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidDateRange  = fmt.Errorf("%w: check-out date must be after check-in date", ErrValidation)
	ErrPastCheckIn       = fmt.Errorf("%w: check-in date cannot be in the past", ErrValidation)
	ErrInvalidGuestCount = fmt.Errorf("%w: guest count must be at least 1", ErrValidation)
	ErrDateTooFar        = fmt.Errorf("%w: check-in date is too far in the future", ErrValidation)

	ErrCapacityExceeded       = errors.New("room type is fully booked for the selected dates")
	ErrTooLateToCancel        = errors.New("cannot cancel within 24 hours of check-in")
	ErrAlreadyCancelled       = errors.New("booking is already cancelled")
	ErrInvalidTransition      = errors.New("booking status transition not allowed")
	ErrConcurrentModification = errors.New("booking was modified concurrently")
	ErrNotFound               = errors.New("not found")
	ErrNoDashboardForRole     = errors.New("no dashboard available for this role")
	ErrRateLimited            = errors.New("too many booking attempts")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
)

// Reason returns a stable machine-readable code for err.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidDateRange):
		return "invalid_date_range"
	case errors.Is(err, ErrPastCheckIn):
		return "past_check_in"
	case errors.Is(err, ErrInvalidGuestCount):
		return "invalid_guest_count"
	case errors.Is(err, ErrDateTooFar):
		return "date_too_far"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrTooLateToCancel):
		return "too_late_to_cancel"
	case errors.Is(err, ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoDashboardForRole):
		return "no_dashboard"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "internal"
	}
}
