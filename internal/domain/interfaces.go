package domain

import (
	"context"
	"time"

	"estatehub/internal/models"

	"github.com/shopspring/decimal"
)

// AdmitFunc decides, inside the booking transaction, whether the candidate
// may be stored given the room type and the active bookings overlapping it.
// It may fill derived fields of the candidate such as the total price.
type AdmitFunc func(roomType *models.RoomType, overlapping []*models.Booking) error

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking, admit AdmitFunc) error
	UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int64, status string) error
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetActiveBookings(ctx context.Context, roomTypeID int64, from, to time.Time) ([]*models.Booking, error)
}

type InventoryRepository interface {
	GetHotel(ctx context.Context, id int64) (*models.Hotel, error)
	GetHotelByManager(ctx context.Context, managerID int64) (*models.Hotel, error)
	GetRoomType(ctx context.Context, id int64) (*models.RoomType, error)
	GetRoomTypesByHotel(ctx context.Context, hotelID int64) ([]*models.RoomType, error)
}

// Repository is the storage surface used by the booking service.
type Repository interface {
	BookingRepository
	InventoryRepository
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

type ListingRepository interface {
	GetProperty(ctx context.Context, id int64) (*models.Property, error)
	CreateInquiry(ctx context.Context, inquiry *models.Inquiry) error
	CreateBlogPost(ctx context.Context, post *models.BlogPost) error
	GetBlogPost(ctx context.Context, id int64) (*models.BlogPost, error)
	UpdateBlogPost(ctx context.Context, post *models.BlogPost) error
	ListBlogPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error)
}

// StatsRepository exposes the aggregate queries behind the dashboards.
type StatsRepository interface {
	CountUsers(ctx context.Context, role models.Role) (int64, error)
	RecentUsers(ctx context.Context, limit int) ([]*models.User, error)
	CountProperties(ctx context.Context, ownerID int64, publishedOnly bool) (int64, error)
	BookingTotals(ctx context.Context, filter BookingFilter) (int64, decimal.Decimal, error)
	CountInquiries(ctx context.Context, ownerID int64, status string) (int64, error)
	RecentInquiries(ctx context.Context, ownerID int64, limit int) ([]*models.Inquiry, error)
	CountViewings(ctx context.Context, ownerID int64, status string) (int64, error)
	GetHotelByManager(ctx context.Context, managerID int64) (*models.Hotel, error)
	GetRoomTypesByHotel(ctx context.Context, hotelID int64) ([]*models.RoomType, error)
	HotelBookingsInWindow(ctx context.Context, hotelID int64, from, to time.Time, statuses []string) ([]*models.Booking, error)
}

// BookingFilter scopes BookingTotals. Zero values mean "no restriction".
type BookingFilter struct {
	HotelID         int64
	PropertyOwnerID int64
}

// AttemptLimiter throttles booking attempts per user.
type AttemptLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}
