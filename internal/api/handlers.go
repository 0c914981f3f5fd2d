package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/export"
	"estatehub/internal/models"
	"estatehub/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}

func queryDate(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if fallback.IsZero() {
			return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
		}
		return fallback, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s; expected YYYY-MM-DD", domain.ErrValidation, name)
	}
	return d, nil
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	user, err := s.users.Register(r.Context(), service.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	token, expires, user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		User:      user,
	})
}

func (s *HTTPServer) handleRoomTypes(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	roomTypes, err := s.bookings.RoomTypesForHotel(r.Context(), hotelID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotel_id": hotelID, "room_types": roomTypes})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	roomTypeID, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	from, err := queryDate(r, "from", models.DateOnly(s.now()))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	nights := 0
	if raw := r.URL.Query().Get("nights"); raw != "" {
		if nights, err = strconv.Atoi(raw); err != nil || nights <= 0 {
			writeDomainError(w, r, s.logger, fmt.Errorf("%w: nights must be a positive integer", domain.ErrValidation))
			return
		}
	}

	calendar, err := s.bookings.GetAvailability(r.Context(), roomTypeID, from, nights)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room_type_id": roomTypeID, "nights": calendar})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var req bookingRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	// the validator has already checked the layout
	checkIn, _ := models.ParseDate(req.CheckIn)
	checkOut, _ := models.ParseDate(req.CheckOut)

	booking, err := s.bookings.AttemptBooking(r.Context(), service.BookingRequest{
		RoomTypeID:      req.RoomTypeID,
		UserID:          actor.UserID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      req.GuestCount,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	bookings, err := s.bookings.ListFor(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	booking, err := s.bookings.GetBooking(r.Context(), id, actor)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type transitionFunc func(ctx context.Context, id int64, actor models.Actor) (*models.Booking, error)

func (s *HTTPServer) handleTransition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	booking, err := fn(r.Context(), id, actor)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, func(ctx context.Context, id int64, actor models.Actor) (*models.Booking, error) {
		return s.bookings.CancelBooking(ctx, id, actor, s.now())
	})
}

func (s *HTTPServer) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.bookings.ConfirmBooking)
}

func (s *HTTPServer) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.bookings.CompleteBooking)
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	snap, err := s.dash.GetDashboard(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) handleBookingsReport(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	from, err := queryDate(r, "from", time.Time{})
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	to, err := queryDate(r, "to", time.Time{})
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	bookings, err := s.bookings.BookingsInRange(r.Context(), actor, from, to)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	var roomTypes []*models.RoomType
	if raw := r.URL.Query().Get("hotel_id"); raw != "" {
		hotelID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeDomainError(w, r, s.logger, fmt.Errorf("%w: invalid hotel_id", domain.ErrValidation))
			return
		}
		if roomTypes, err = s.bookings.RoomTypesForHotel(r.Context(), hotelID); err != nil {
			writeDomainError(w, r, s.logger, err)
			return
		}
		bookings = filterHotel(bookings, hotelID)
	}

	var buf bytes.Buffer
	if err := export.WriteBookingsReport(&buf, from, to, bookings, roomTypes); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_%s_%s.xlsx"`,
		from.Format(models.DateLayout), to.Format(models.DateLayout)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func filterHotel(bookings []*models.Booking, hotelID int64) []*models.Booking {
	out := bookings[:0:0]
	for _, b := range bookings {
		if b.HotelID == hotelID {
			out = append(out, b)
		}
	}
	return out
}

func (s *HTTPServer) handleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	var req inquiryRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	inquiry, err := s.listings.CreateInquiry(r.Context(), propertyID, service.InquiryInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiry)
}

func (s *HTTPServer) handleListBlog(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	posts, err := s.listings.ListBlogPosts(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *HTTPServer) handleCreateBlogPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	var req blogPostRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	post, err := s.listings.CreateBlogPost(r.Context(), actor, req.Title, req.Content, req.Publish)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *HTTPServer) handlePublishBlogPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	post, err := s.listings.PublishBlogPost(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
