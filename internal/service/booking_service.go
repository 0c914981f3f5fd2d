package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estatehub/internal/availability"
	"estatehub/internal/config"
	"estatehub/internal/domain"
	"estatehub/internal/events"
	"estatehub/internal/metrics"
	"estatehub/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BookingRequest is a guest's request to reserve a room type for a stay.
type BookingRequest struct {
	RoomTypeID      int64
	UserID          int64
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	SpecialRequests string
}

type BookingService struct {
	repo         domain.Repository
	checker      *availability.Checker
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	limiter      domain.AttemptLimiter
	cfg          config.BookingConfig
	locks        *keyedMutex
	now          func() time.Time
	logger       *zerolog.Logger
}

func NewBookingService(repo domain.Repository, checker *availability.Checker, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, cfg config.BookingConfig, logger *zerolog.Logger) *BookingService {
	if cfg.MaxBookingDays <= 0 {
		cfg.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if cfg.MinCancelNoticeHours <= 0 {
		cfg.MinCancelNoticeHours = models.MinCancelNoticeHours
	}
	if checker == nil {
		checker = availability.NewChecker(availability.PolicyGuestCount)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingService{
		repo:         repo,
		checker:      checker,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		cfg:          cfg,
		locks:        newKeyedMutex(),
		now:          time.Now,
		logger:       logger,
	}
}

// WithAttemptLimiter throttles AttemptBooking per user. A zero attempt limit
// in the config disables throttling.
func (s *BookingService) WithAttemptLimiter(l domain.AttemptLimiter) *BookingService {
	s.limiter = l
	return s
}

func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// ValidateRequest checks the request shape against today's date.
func (s *BookingService) ValidateRequest(req BookingRequest, today time.Time) error {
	if req.RoomTypeID <= 0 {
		return fmt.Errorf("%w: room type is required", domain.ErrValidation)
	}
	if req.GuestCount < 1 {
		return domain.ErrInvalidGuestCount
	}

	checkIn, checkOut := models.DateOnly(req.CheckIn), models.DateOnly(req.CheckOut)
	if !checkOut.After(checkIn) {
		return domain.ErrInvalidDateRange
	}

	today = models.DateOnly(today)
	if checkIn.Before(today) {
		return domain.ErrPastCheckIn
	}
	if checkIn.After(today.AddDate(0, 0, s.cfg.MaxBookingDays)) {
		return domain.ErrDateTooFar
	}
	return nil
}

// AttemptBooking validates the request and stores a pending booking if the
// room type has capacity for the whole stay. The capacity check and the
// insert are atomic with respect to other attempts on the same room type.
func (s *BookingService) AttemptBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	booking, err := s.attemptBooking(ctx, req)
	metrics.IncBookingAttempt(domain.Reason(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("room_type_id", booking.RoomTypeID).
		Int64("user_id", booking.UserID).
		Str("total_price", booking.TotalPrice.StringFixed(2)).
		Msg("booking created")

	s.publishEvent(events.EventBookingCreated, booking, booking.UserID)
	s.enqueueSync(ctx, booking, models.SyncTaskUpsert)
	return booking, nil
}

func (s *BookingService) attemptBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	if err := s.ValidateRequest(req, s.now()); err != nil {
		return nil, err
	}

	if err := s.checkAttemptLimit(ctx, req.UserID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		RoomTypeID:      req.RoomTypeID,
		UserID:          req.UserID,
		CheckIn:         models.DateOnly(req.CheckIn),
		CheckOut:        models.DateOnly(req.CheckOut),
		GuestCount:      req.GuestCount,
		Status:          models.StatusPending,
		SpecialRequests: req.SpecialRequests,
	}

	unlock := s.locks.Lock(req.RoomTypeID)
	defer unlock()

	err := s.repo.CreateBookingWithLock(ctx, booking, func(rt *models.RoomType, overlapping []*models.Booking) error {
		if err := s.checker.Admit(rt, overlapping, booking); err != nil {
			return err
		}
		booking.TotalPrice = rt.PricePerNight.Mul(decimal.NewFromInt(int64(booking.Nights())))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) checkAttemptLimit(ctx context.Context, userID int64) error {
	if s.limiter == nil || s.cfg.AttemptLimit <= 0 {
		return nil
	}

	allowed, err := s.limiter.CheckRateLimit(ctx, userID, s.cfg.AttemptLimit, s.cfg.AttemptWindow())
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("attempt limiter unavailable, allowing request")
		return nil
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

// CancelBooking cancels a booking on behalf of its owner or an admin. Other
// callers get domain.ErrNotFound so they cannot probe for foreign bookings.
// Cancellation must happen at least the configured notice ahead of check-in.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, actor models.Actor, now time.Time) (*models.Booking, error) {
	booking, err := s.cancelBooking(ctx, bookingID, actor, now)
	metrics.IncTransition(models.StatusCancelled, domain.Reason(err))
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCancelled, booking, actor.UserID)
	s.enqueueSync(ctx, booking, models.SyncTaskUpdateStatus)
	return booking, nil
}

func (s *BookingService) cancelBooking(ctx context.Context, bookingID int64, actor models.Actor, now time.Time) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(booking.UserID) {
		return nil, fmt.Errorf("booking %d: %w", bookingID, domain.ErrNotFound)
	}

	if booking.Status == models.StatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	if !models.CanTransition(booking.Status, models.StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, booking.Status, models.StatusCancelled)
	}
	if booking.CheckIn.Sub(now) < s.cfg.MinCancelNotice() {
		return nil, domain.ErrTooLateToCancel
	}

	return s.applyStatus(ctx, booking, models.StatusCancelled)
}

// ConfirmBooking moves a pending booking to confirmed. Admins and the manager
// of the booking's hotel may confirm.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64, actor models.Actor) (*models.Booking, error) {
	return s.staffTransition(ctx, bookingID, actor, models.StatusConfirmed, events.EventBookingConfirmed)
}

// CompleteBooking marks a confirmed stay as completed.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID int64, actor models.Actor) (*models.Booking, error) {
	return s.staffTransition(ctx, bookingID, actor, models.StatusCompleted, events.EventBookingCompleted)
}

func (s *BookingService) staffTransition(ctx context.Context, bookingID int64, actor models.Actor, status, eventType string) (*models.Booking, error) {
	booking, err := s.transitionAsStaff(ctx, bookingID, actor, status)
	metrics.IncTransition(status, domain.Reason(err))
	if err != nil {
		return nil, err
	}

	s.publishEvent(eventType, booking, actor.UserID)
	s.enqueueSync(ctx, booking, models.SyncTaskUpdateStatus)
	return booking, nil
}

func (s *BookingService) transitionAsStaff(ctx context.Context, bookingID int64, actor models.Actor, status string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeStaff(ctx, booking, actor); err != nil {
		return nil, err
	}
	if !models.CanTransition(booking.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, booking.Status, status)
	}

	return s.applyStatus(ctx, booking, status)
}

func (s *BookingService) authorizeStaff(ctx context.Context, booking *models.Booking, actor models.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != models.RoleHotelManager {
		return domain.ErrForbidden
	}

	hotel, err := s.repo.GetHotel(ctx, booking.HotelID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrForbidden
	}
	if err != nil {
		return err
	}
	if hotel.ManagerID != actor.UserID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *BookingService) applyStatus(ctx context.Context, booking *models.Booking, status string) (*models.Booking, error) {
	if err := s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", booking.ID).Msg("reload after status change failed")
		booking.Status = status
		booking.Version++
		return booking, nil
	}
	return updated, nil
}

// GetBooking returns a booking visible to the actor.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64, actor models.Actor) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(booking.UserID) {
		return nil, fmt.Errorf("booking %d: %w", bookingID, domain.ErrNotFound)
	}
	return booking, nil
}

// ListFor returns every booking for admins and the caller's own otherwise.
func (s *BookingService) ListFor(ctx context.Context, actor models.Actor) ([]*models.Booking, error) {
	var (
		bookings []*models.Booking
		err      error
	)
	if actor.IsAdmin() {
		bookings, err = s.repo.GetAllBookings(ctx)
	} else {
		bookings, err = s.repo.GetUserBookings(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return bookings, nil
}

// BookingsInRange lists bookings whose stay intersects [from, to]. Admin only.
func (s *BookingService) BookingsInRange(ctx context.Context, actor models.Actor, from, to time.Time) ([]*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}
	return s.repo.GetBookingsByDateRange(ctx, models.DateOnly(from), models.DateOnly(to))
}

// GetAvailability returns the per-night free capacity of a room type.
func (s *BookingService) GetAvailability(ctx context.Context, roomTypeID int64, from time.Time, nights int) ([]*models.Availability, error) {
	if nights <= 0 {
		nights = models.DefaultAvailabilityNights
	}
	if nights > models.MaxAvailabilityNights {
		return nil, fmt.Errorf("%w: at most %d nights per request", domain.ErrValidation, models.MaxAvailabilityNights)
	}

	rt, err := s.repo.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}

	from = models.DateOnly(from)
	to := from.AddDate(0, 0, nights)
	bookings, err := s.repo.GetActiveBookings(ctx, roomTypeID, from, to)
	if err != nil {
		return nil, err
	}
	return s.checker.Nightly(rt, bookings, from, nights), nil
}

func (s *BookingService) RoomTypesForHotel(ctx context.Context, hotelID int64) ([]*models.RoomType, error) {
	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.repo.GetRoomTypesByHotel(ctx, hotelID)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.NewBookingPayload(booking, changedByID)
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.sheetsWorker == nil {
		return
	}

	var status string
	if taskType == models.SyncTaskUpdateStatus {
		status = booking.Status
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
