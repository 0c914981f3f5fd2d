package database

import (
	"context"
	"testing"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_EmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.CountUsers(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	count, revenue, err := db.BookingTotals(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.True(t, revenue.IsZero())

	users, err := db.RecentUsers(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	other := &models.Property{Title: "Flat", Slug: "flat", OwnerID: f.agent.ID, Price: decimal.NewFromInt(10)}
	require.NoError(t, db.CreateProperty(ctx, other))

	strangerHotel := &models.Hotel{Name: "Other", ManagerID: f.admin.ID, IsActive: true}
	require.NoError(t, db.CreateHotel(ctx, strangerHotel))
	strangerRoom := &models.RoomType{HotelID: strangerHotel.ID, Name: "Room", Quantity: 5, PricePerNight: decimal.NewFromInt(10)}
	require.NoError(t, db.CreateRoomType(ctx, strangerRoom))

	bookings := []*models.Booking{
		{RoomTypeID: f.double.ID, UserID: f.buyer.ID, CheckIn: date("2025-06-01"), CheckOut: date("2025-06-03"), GuestCount: 1, Status: models.StatusConfirmed, TotalPrice: decimal.RequireFromString("241.00")},
		{RoomTypeID: f.suite.ID, UserID: f.buyer.ID, CheckIn: date("2025-06-20"), CheckOut: date("2025-06-25"), GuestCount: 1, Status: models.StatusCancelled, TotalPrice: decimal.RequireFromString("1500.00")},
		{RoomTypeID: f.double.ID, UserID: f.buyer.ID, CheckIn: date("2025-05-28"), CheckOut: date("2025-06-02"), GuestCount: 1, Status: models.StatusCompleted, TotalPrice: decimal.RequireFromString("0.10")},
		{RoomTypeID: strangerRoom.ID, UserID: f.buyer.ID, CheckIn: date("2025-06-05"), CheckOut: date("2025-06-06"), GuestCount: 1, Status: models.StatusPending, TotalPrice: decimal.RequireFromString("10.00")},
	}
	for _, b := range bookings {
		require.NoError(t, db.CreateBooking(ctx, b))
	}

	for i := 0; i < 3; i++ {
		inq := &models.Inquiry{PropertyID: f.property.ID, Name: "n", Email: "e@x", Message: "m", CreatedAt: time.Date(2025, 2, 1+i, 0, 0, 0, 0, time.UTC)}
		if i == 0 {
			inq.Status = models.InquiryResponded
		}
		require.NoError(t, db.CreateInquiry(ctx, inq))
	}
	require.NoError(t, db.CreateViewing(ctx, &models.Viewing{PropertyID: other.ID, UserID: f.buyer.ID, ScheduledAt: time.Now()}))
	require.NoError(t, db.CreateViewing(ctx, &models.Viewing{PropertyID: other.ID, UserID: f.buyer.ID, ScheduledAt: time.Now(), Status: models.ViewingCancelled}))

	t.Run("Users", func(t *testing.T) {
		n, err := db.CountUsers(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)

		n, err = db.CountUsers(ctx, models.RoleAgent)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		recent, err := db.RecentUsers(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, f.buyer.ID, recent[0].ID)
		assert.Equal(t, f.manager.ID, recent[1].ID)
	})

	t.Run("Properties", func(t *testing.T) {
		n, err := db.CountProperties(ctx, 0, false)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = db.CountProperties(ctx, f.agent.ID, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = db.CountProperties(ctx, f.buyer.ID, false)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("BookingTotals", func(t *testing.T) {
		count, revenue, err := db.BookingTotals(ctx, domain.BookingFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.True(t, revenue.Equal(decimal.RequireFromString("1751.10")), revenue.String())

		count, revenue, err = db.BookingTotals(ctx, domain.BookingFilter{HotelID: f.hotel.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.True(t, revenue.Equal(decimal.RequireFromString("1741.10")), revenue.String())

		count, _, err = db.BookingTotals(ctx, domain.BookingFilter{PropertyOwnerID: f.agent.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, _, err = db.BookingTotals(ctx, domain.BookingFilter{PropertyOwnerID: f.buyer.ID})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Inquiries", func(t *testing.T) {
		n, err := db.CountInquiries(ctx, f.agent.ID, models.InquiryPending)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = db.CountInquiries(ctx, f.buyer.ID, "")
		require.NoError(t, err)
		assert.Zero(t, n)

		recent, err := db.RecentInquiries(ctx, f.agent.ID, 5)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), recent[0].CreatedAt.UTC())
	})

	t.Run("Viewings", func(t *testing.T) {
		n, err := db.CountViewings(ctx, f.agent.ID, models.ViewingScheduled)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("HotelBookingsInWindow", func(t *testing.T) {
		statuses := []string{models.StatusConfirmed, models.StatusCompleted}
		got, err := db.HotelBookingsInWindow(ctx, f.hotel.ID, date("2025-06-02"), date("2025-07-02"), statuses)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, date("2025-05-28"), got[0].CheckIn)
		assert.Equal(t, date("2025-06-01"), got[1].CheckIn)

		got, err = db.HotelBookingsInWindow(ctx, f.hotel.ID, date("2025-06-03"), date("2025-07-03"), statuses)
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
