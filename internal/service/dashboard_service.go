package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estatehub/internal/availability"
	"estatehub/internal/domain"
	"estatehub/internal/metrics"
	"estatehub/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type aggregator func(ctx context.Context, actor models.Actor, today time.Time) (*models.DashboardSnapshot, error)

// DashboardService computes role-scoped statistics snapshots.
type DashboardService struct {
	stats       domain.StatsRepository
	aggregators map[models.Role]aggregator
	now         func() time.Time
	logger      *zerolog.Logger
}

func NewDashboardService(stats domain.StatsRepository, logger *zerolog.Logger) *DashboardService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &DashboardService{
		stats:  stats,
		now:    time.Now,
		logger: logger,
	}
	s.aggregators = map[models.Role]aggregator{
		models.RoleAdmin:        s.adminDashboard,
		models.RoleAgent:        s.agentDashboard,
		models.RoleHotelManager: s.hotelManagerDashboard,
	}
	return s
}

func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// GetDashboard returns the snapshot for the actor's role. Roles without a
// dashboard get domain.ErrNoDashboardForRole.
func (s *DashboardService) GetDashboard(ctx context.Context, actor models.Actor) (*models.DashboardSnapshot, error) {
	agg, ok := s.aggregators[actor.Role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoDashboardForRole, actor.Role)
	}

	started := time.Now()
	defer metrics.ObserveDashboard(string(actor.Role), started)

	snap, err := agg(ctx, actor, models.DateOnly(s.now()))
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", actor.UserID).Str("role", string(actor.Role)).Msg("dashboard aggregation failed")
		return nil, err
	}
	return snap, nil
}

func (s *DashboardService) adminDashboard(ctx context.Context, _ models.Actor, _ time.Time) (*models.DashboardSnapshot, error) {
	st := &models.AdminStats{}
	var err error

	if st.TotalUsers, err = s.stats.CountUsers(ctx, ""); err != nil {
		return nil, err
	}
	if st.TotalAgents, err = s.stats.CountUsers(ctx, models.RoleAgent); err != nil {
		return nil, err
	}
	if st.TotalHotelManagers, err = s.stats.CountUsers(ctx, models.RoleHotelManager); err != nil {
		return nil, err
	}
	if st.TotalProperties, err = s.stats.CountProperties(ctx, 0, false); err != nil {
		return nil, err
	}
	if st.PublishedProperties, err = s.stats.CountProperties(ctx, 0, true); err != nil {
		return nil, err
	}
	if st.TotalBookings, st.TotalRevenue, err = s.stats.BookingTotals(ctx, domain.BookingFilter{}); err != nil {
		return nil, err
	}
	if st.RecentUsers, err = s.stats.RecentUsers(ctx, models.RecentItemsLimit); err != nil {
		return nil, err
	}
	if st.RecentUsers == nil {
		st.RecentUsers = []*models.User{}
	}

	return &models.DashboardSnapshot{Role: models.RoleAdmin, Admin: st}, nil
}

func (s *DashboardService) agentDashboard(ctx context.Context, actor models.Actor, _ time.Time) (*models.DashboardSnapshot, error) {
	st := &models.AgentStats{}
	var err error

	if st.TotalProperties, err = s.stats.CountProperties(ctx, actor.UserID, false); err != nil {
		return nil, err
	}
	if st.PublishedProperties, err = s.stats.CountProperties(ctx, actor.UserID, true); err != nil {
		return nil, err
	}
	if st.TotalBookings, st.TotalRevenue, err = s.stats.BookingTotals(ctx, domain.BookingFilter{PropertyOwnerID: actor.UserID}); err != nil {
		return nil, err
	}
	if st.PendingInquiries, err = s.stats.CountInquiries(ctx, actor.UserID, models.InquiryPending); err != nil {
		return nil, err
	}
	if st.ScheduledViewings, err = s.stats.CountViewings(ctx, actor.UserID, models.ViewingScheduled); err != nil {
		return nil, err
	}
	if st.RecentInquiries, err = s.stats.RecentInquiries(ctx, actor.UserID, models.RecentItemsLimit); err != nil {
		return nil, err
	}
	if st.RecentInquiries == nil {
		st.RecentInquiries = []*models.Inquiry{}
	}

	return &models.DashboardSnapshot{Role: models.RoleAgent, Agent: st}, nil
}

// hotelManagerDashboard reports on the manager's hotel. A manager without a
// hotel gets an all-zero snapshot rather than an error.
func (s *DashboardService) hotelManagerDashboard(ctx context.Context, actor models.Actor, today time.Time) (*models.DashboardSnapshot, error) {
	st := &models.HotelManagerStats{
		TotalRevenue:     decimal.Zero,
		UpcomingBookings: []*models.Booking{},
	}
	snap := &models.DashboardSnapshot{Role: models.RoleHotelManager, HotelManager: st}

	hotel, err := s.stats.GetHotelByManager(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	st.HotelID = hotel.ID
	st.HotelName = hotel.Name
	st.TotalProperties = 1
	if hotel.IsActive {
		st.ActiveListings = 1
	}

	roomTypes, err := s.stats.GetRoomTypesByHotel(ctx, hotel.ID)
	if err != nil {
		return nil, err
	}
	for _, rt := range roomTypes {
		st.TotalRooms += int64(rt.Quantity)
		if rt.IsAvailable {
			st.AvailableRooms += int64(rt.Quantity)
		}
	}

	windowEnd := today.AddDate(0, 0, models.OccupancyWindowDays)
	window, err := s.stats.HotelBookingsInWindow(ctx, hotel.ID, today, windowEnd,
		[]string{models.StatusConfirmed, models.StatusCompleted})
	if err != nil {
		return nil, err
	}

	// occupancy is measured over the upcoming list, not the whole window
	if len(window) > models.UpcomingBookingsLimit {
		window = window[:models.UpcomingBookingsLimit]
	}
	st.UpcomingBookings = append(st.UpcomingBookings, window...)
	st.OccupancyRate = availability.OccupancyRate(st.UpcomingBookings, st.TotalRooms, today, models.OccupancyWindowDays)

	if st.TotalBookings, st.TotalRevenue, err = s.stats.BookingTotals(ctx, domain.BookingFilter{HotelID: hotel.ID}); err != nil {
		return nil, err
	}
	return snap, nil
}
