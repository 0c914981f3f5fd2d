package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	InquiryPending   = "pending"
	InquiryResponded = "responded"
	InquiryClosed    = "closed"
)

const (
	ViewingScheduled = "scheduled"
	ViewingCompleted = "completed"
	ViewingCancelled = "cancelled"
)

const (
	// DateLayout is the storage and wire format of calendar dates.
	DateLayout = "2006-01-02"

	// MinCancelNoticeHours is how far ahead of check-in a booking may still be cancelled.
	MinCancelNoticeHours = 24

	// DefaultMaxBookingDays limits how far ahead check-in may be placed.
	DefaultMaxBookingDays = 365

	// OccupancyWindowDays is the horizon of the hotel manager occupancy figure.
	OccupancyWindowDays = 30

	// UpcomingBookingsLimit caps the manager dashboard upcoming list.
	UpcomingBookingsLimit = 10

	// RecentItemsLimit caps "recent users" and "recent inquiries" lists.
	RecentItemsLimit = 5

	// WorkerQueueSize bounds the in-memory sync queue.
	WorkerQueueSize = 1000

	// DefaultAvailabilityNights is used when the calendar request omits nights.
	DefaultAvailabilityNights = 14

	// MaxAvailabilityNights bounds a single calendar request.
	MaxAvailabilityNights = 90
)
