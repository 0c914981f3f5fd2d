// Package api exposes the marketplace over HTTP/JSON and a gRPC health
// endpoint.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"estatehub/internal/config"
	"estatehub/internal/service"

	"github.com/rs/zerolog"
)

// Services bundles what the HTTP handlers call into.
type Services struct {
	Bookings  *service.BookingService
	Dashboard *service.DashboardService
	Users     *service.UserService
	Listings  *service.ListingService
	Tokens    TokenVerifier
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

type HTTPServer struct {
	cfg      config.APIConfig
	bookings *service.BookingService
	dash     *service.DashboardService
	users    *service.UserService
	listings *service.ListingService
	tokens   TokenVerifier
	ready    func(ctx context.Context) error
	limiter  *clientLimiter
	handler  http.Handler
	server   *http.Server
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "http").Logger()

	s := &HTTPServer{
		cfg:      cfg,
		bookings: svc.Bookings,
		dash:     svc.Dashboard,
		users:    svc.Users,
		listings: svc.Listings,
		tokens:   svc.Tokens,
		ready:    svc.Ready,
		limiter:  newClientLimiter(cfg.RateLimit),
		now:      time.Now,
		logger:   &l,
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = loggingMiddleware(s.logger, rateLimitMiddleware(s.limiter, mux))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/token", s.handleToken)

	mux.HandleFunc("GET /api/v1/hotels/{id}/room-types", s.handleRoomTypes)
	mux.HandleFunc("GET /api/v1/room-types/{id}/availability", s.handleAvailability)

	mux.HandleFunc("POST /api/v1/bookings", s.requireAuth(s.handleCreateBooking))
	mux.HandleFunc("GET /api/v1/bookings", s.requireAuth(s.handleListBookings))
	mux.HandleFunc("GET /api/v1/bookings/{id}", s.requireAuth(s.handleGetBooking))
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", s.requireAuth(s.handleCancelBooking))
	mux.HandleFunc("POST /api/v1/bookings/{id}/confirm", s.requireAuth(s.handleConfirmBooking))
	mux.HandleFunc("POST /api/v1/bookings/{id}/complete", s.requireAuth(s.handleCompleteBooking))

	mux.HandleFunc("GET /api/v1/dashboard", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("GET /api/v1/reports/bookings", s.requireAuth(s.handleBookingsReport))

	mux.HandleFunc("POST /api/v1/properties/{id}/inquiries", s.handleCreateInquiry)

	mux.HandleFunc("GET /api/v1/blog", s.optionalAuth(s.handleListBlog))
	mux.HandleFunc("POST /api/v1/blog", s.requireAuth(s.handleCreateBlogPost))
	mux.HandleFunc("POST /api/v1/blog/{id}/publish", s.requireAuth(s.handlePublishBlogPost))
}

// Handler is the fully wrapped router.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
