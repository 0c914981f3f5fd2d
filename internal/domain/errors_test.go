package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorsWrapParent(t *testing.T) {
	for _, err := range []error{ErrInvalidDateRange, ErrPastCheckIn, ErrInvalidGuestCount, ErrDateTooFar} {
		assert.True(t, errors.Is(err, ErrValidation), err.Error())
	}
	assert.False(t, errors.Is(ErrCapacityExceeded, ErrValidation))
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrInvalidDateRange, "invalid_date_range"},
		{fmt.Errorf("create booking: %w", ErrCapacityExceeded), "capacity_exceeded"},
		{fmt.Errorf("%w: room_type_id is required", ErrValidation), "validation"},
		{ErrTooLateToCancel, "too_late_to_cancel"},
		{ErrNoDashboardForRole, "no_dashboard"},
		{errors.New("disk full"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err))
	}
}
