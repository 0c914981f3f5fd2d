package service

import (
	"context"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

// CreateBookingWithLock feeds the stubbed room type and overlapping bookings
// to admit, mirroring the transactional repository.
func (m *mockRepo) CreateBookingWithLock(ctx context.Context, b *models.Booking, admit domain.AdmitFunc) error {
	args := m.Called(ctx, b)
	if err := args.Error(2); err != nil {
		return err
	}
	rt, _ := args.Get(0).(*models.RoomType)
	overlapping, _ := args.Get(1).([]*models.Booking)
	if err := admit(rt, overlapping); err != nil {
		return err
	}
	b.ID = 100
	b.Version = 1
	return nil
}
func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id, v int64, s string) error {
	return m.Called(ctx, id, v, s).Error(0)
}
func (m *mockRepo) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingsByDateRange(ctx context.Context, s, e time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetActiveBookings(ctx context.Context, id int64, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetHotel(ctx context.Context, id int64) (*models.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *mockRepo) GetHotelByManager(ctx context.Context, id int64) (*models.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *mockRepo) GetRoomType(ctx context.Context, id int64) (*models.RoomType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomType), args.Error(1)
}
func (m *mockRepo) GetRoomTypesByHotel(ctx context.Context, id int64) ([]*models.RoomType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RoomType), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error {
	return m.Called(ctx, taskType, bookingID, booking, status).Error(0)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockStats struct {
	mock.Mock
}

func (m *mockStats) CountUsers(ctx context.Context, role models.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockStats) RecentUsers(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockStats) CountProperties(ctx context.Context, ownerID int64, publishedOnly bool) (int64, error) {
	args := m.Called(ctx, ownerID, publishedOnly)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockStats) BookingTotals(ctx context.Context, filter domain.BookingFilter) (int64, decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Error(2)
}
func (m *mockStats) CountInquiries(ctx context.Context, ownerID int64, status string) (int64, error) {
	args := m.Called(ctx, ownerID, status)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockStats) RecentInquiries(ctx context.Context, ownerID int64, limit int) ([]*models.Inquiry, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Inquiry), args.Error(1)
}
func (m *mockStats) CountViewings(ctx context.Context, ownerID int64, status string) (int64, error) {
	args := m.Called(ctx, ownerID, status)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockStats) GetHotelByManager(ctx context.Context, managerID int64) (*models.Hotel, error) {
	args := m.Called(ctx, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *mockStats) GetRoomTypesByHotel(ctx context.Context, hotelID int64) ([]*models.RoomType, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RoomType), args.Error(1)
}
func (m *mockStats) HotelBookingsInWindow(ctx context.Context, hotelID int64, from, to time.Time, statuses []string) ([]*models.Booking, error) {
	args := m.Called(ctx, hotelID, from, to, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUsers) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockListings struct {
	mock.Mock
}

func (m *mockListings) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}
func (m *mockListings) CreateInquiry(ctx context.Context, inq *models.Inquiry) error {
	return m.Called(ctx, inq).Error(0)
}
func (m *mockListings) CreateBlogPost(ctx context.Context, p *models.BlogPost) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockListings) GetBlogPost(ctx context.Context, id int64) (*models.BlogPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}
func (m *mockListings) UpdateBlogPost(ctx context.Context, p *models.BlogPost) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockListings) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	args := m.Called(ctx, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BlogPost), args.Error(1)
}
