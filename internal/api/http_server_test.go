package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"estatehub/internal/auth"
	"estatehub/internal/config"
	"estatehub/internal/database"
	"estatehub/internal/domain"
	"estatehub/internal/models"
	"estatehub/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse"

type testEnv struct {
	ts       *httptest.Server
	db       *database.DB
	tokens   *auth.TokenManager
	admin    *models.User
	guest    *models.User
	other    *models.User
	manager  *models.User
	agent    *models.User
	hotel    *models.Hotel
	roomType *models.RoomType
	property *models.Property
}

func newTestEnv(t *testing.T, apiCfg config.APIConfig) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	env := &testEnv{db: db}
	mkUser := func(email string, role models.Role) *models.User {
		u := &models.User{Email: email, Role: role, PasswordHash: hash, IsActive: true}
		require.NoError(t, db.CreateUser(ctx, u))
		return u
	}
	env.admin = mkUser("admin@example.com", models.RoleAdmin)
	env.guest = mkUser("guest@example.com", models.RoleBuyer)
	env.other = mkUser("other@example.com", models.RoleBuyer)
	env.manager = mkUser("manager@example.com", models.RoleHotelManager)
	env.agent = mkUser("agent@example.com", models.RoleAgent)

	env.property = &models.Property{Title: "Sea view flat", Slug: "sea-view-flat", OwnerID: env.agent.ID, ListingType: "sale", Price: decimal.NewFromInt(250000), IsPublished: true}
	require.NoError(t, db.CreateProperty(ctx, env.property))

	env.hotel = &models.Hotel{Name: "Seaside", City: "Nice", ManagerID: env.manager.ID, IsActive: true}
	require.NoError(t, db.CreateHotel(ctx, env.hotel))
	env.roomType = &models.RoomType{HotelID: env.hotel.ID, Name: "Double", Quantity: 2, PricePerNight: decimal.RequireFromString("120.50"), MaxGuests: 2, IsAvailable: true}
	require.NoError(t, db.CreateRoomType(ctx, env.roomType))

	if apiCfg.Auth.JWTSecret == "" {
		apiCfg.Auth = config.APIAuthConfig{JWTSecret: "test-secret", Issuer: "estatehub", TokenTTLMinutes: 60}
	}
	env.tokens = auth.NewTokenManager(apiCfg.Auth)

	srv := NewHTTPServer(apiCfg, Services{
		Bookings:  service.NewBookingService(db, nil, nil, nil, config.BookingConfig{}, &logger),
		Dashboard: service.NewDashboardService(db, &logger),
		Users:     service.NewUserService(db, env.tokens, &logger),
		Listings:  service.NewListingService(db, nil, &logger),
		Tokens:    env.tokens,
		Ready:     func(ctx context.Context) error { return db.PingContext(ctx) },
	}, &logger)

	env.ts = httptest.NewServer(srv.Handler())
	t.Cleanup(env.ts.Close)
	return env
}

func (e *testEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(u)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func stayJSON(roomTypeID int64, inDays, nights, guests int) string {
	today := models.DateOnly(time.Now())
	return fmt.Sprintf(`{"room_type_id":%d,"check_in_date":%q,"check_out_date":%q,"guest_count":%d}`,
		roomTypeID,
		today.AddDate(0, 0, inDays).Format(models.DateLayout),
		today.AddDate(0, 0, inDays+nights).Format(models.DateLayout),
		guests)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	resp := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	resp = env.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.db.Close()
	resp = env.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	t.Run("Login", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/auth/token", "", `{"email":"Guest@Example.com","password":"`+testPassword+`"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body tokenResponse
		decodeBody(t, resp, &body)
		claims, err := env.tokens.Verify(body.Token)
		require.NoError(t, err)
		assert.Equal(t, env.guest.ID, claims.UserID)
		assert.Equal(t, models.RoleBuyer, claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/auth/token", "", `{"email":"guest@example.com","password":"nope-nope"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("RegisterBuyer", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/auth/register", "", `{"email":"new@example.com","password":"long-enough-pw","first_name":"Ann"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var u models.User
		decodeBody(t, resp, &u)
		assert.Equal(t, models.RoleBuyer, u.Role)
	})

	t.Run("RegisterStaffRoleRejected", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/auth/register", "", `{"email":"boss@example.com","password":"long-enough-pw","role":"admin"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UnknownField", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/auth/token", "", `{"email":"guest@example.com","password":"x","extra":1}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestBookingLifecycle(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	guestToken := env.token(t, env.guest)

	t.Run("RequiresToken", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/bookings", "", stayJSON(env.roomType.ID, 10, 2, 1))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp = env.do(t, http.MethodGet, "/api/v1/bookings", "garbage", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var created models.Booking
	t.Run("Create", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/bookings", guestToken, stayJSON(env.roomType.ID, 10, 2, 2))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		decodeBody(t, resp, &created)
		assert.Equal(t, models.StatusPending, created.Status)
		assert.Equal(t, env.guest.ID, created.UserID)
		assert.Equal(t, "241.00", created.TotalPrice.StringFixed(2))
	})

	t.Run("CapacityExceeded", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/bookings", env.token(t, env.other), stayJSON(env.roomType.ID, 11, 1, 1))
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "capacity_exceeded", body.Reason)
	})

	t.Run("InvalidDateRange", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/bookings", guestToken, stayJSON(env.roomType.ID, 20, 0, 1))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "invalid_date_range", body.Reason)
	})

	t.Run("BadDateFormat", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/bookings", guestToken,
			fmt.Sprintf(`{"room_type_id":%d,"check_in_date":"01/02/2030","check_out_date":"2030-02-03","guest_count":1}`, env.roomType.ID))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ListAndGet", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/v1/bookings", guestToken, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list struct {
			Bookings []*models.Booking `json:"bookings"`
		}
		decodeBody(t, resp, &list)
		require.Len(t, list.Bookings, 1)

		resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", created.ID), guestToken, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", created.ID), env.token(t, env.other), "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/api/v1/bookings/abc", guestToken, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ConfirmRequiresStaff", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/confirm", created.ID), guestToken, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/confirm", created.ID), env.token(t, env.manager), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var b models.Booking
		decodeBody(t, resp, &b)
		assert.Equal(t, models.StatusConfirmed, b.Status)
	})

	t.Run("CancelTwice", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%d/cancel", created.ID)
		resp := env.do(t, http.MethodPost, path, guestToken, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var b models.Booking
		decodeBody(t, resp, &b)
		assert.Equal(t, models.StatusCancelled, b.Status)

		resp = env.do(t, http.MethodPost, path, guestToken, "")
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "already_cancelled", body.Reason)
	})

	t.Run("TooLateToCancel", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/v1/bookings", guestToken, stayJSON(env.roomType.ID, 0, 1, 1))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var b models.Booking
		decodeBody(t, resp, &b)

		resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", b.ID), guestToken, "")
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "too_late_to_cancel", body.Reason)
	})
}

func TestAvailabilityEndpoint(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	resp := env.do(t, http.MethodPost, "/api/v1/bookings", env.token(t, env.guest), stayJSON(env.roomType.ID, 5, 1, 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	from := models.DateOnly(time.Now()).AddDate(0, 0, 4).Format(models.DateLayout)
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/room-types/%d/availability?from=%s&nights=3", env.roomType.ID, from), "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Nights []*models.Availability `json:"nights"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Nights, 3)
	assert.Equal(t, int64(2), body.Nights[0].Available)
	assert.Equal(t, int64(1), body.Nights[1].Available)
	assert.Equal(t, int64(2), body.Nights[2].Available)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/room-types/%d/availability?nights=abc", env.roomType.ID), "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/room-types/999/availability", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/hotels/%d/room-types", env.hotel.ID), "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rts struct {
		RoomTypes []*models.RoomType `json:"room_types"`
	}
	decodeBody(t, resp, &rts)
	require.Len(t, rts.RoomTypes, 1)
	assert.Equal(t, "Double", rts.RoomTypes[0].Name)
}

func TestDashboardEndpoint(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	resp := env.do(t, http.MethodGet, "/api/v1/dashboard", env.token(t, env.admin), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap models.DashboardSnapshot
	decodeBody(t, resp, &snap)
	require.NotNil(t, snap.Admin)
	assert.Equal(t, int64(5), snap.Admin.TotalUsers)
	assert.Equal(t, int64(1), snap.Admin.PublishedProperties)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard", env.token(t, env.manager), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = models.DashboardSnapshot{}
	decodeBody(t, resp, &snap)
	require.NotNil(t, snap.HotelManager)
	assert.Equal(t, int64(2), snap.HotelManager.TotalRooms)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard", env.token(t, env.guest), "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "no_dashboard", body.Reason)
}

func TestBookingsReportEndpoint(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	resp := env.do(t, http.MethodPost, "/api/v1/bookings", env.token(t, env.guest), stayJSON(env.roomType.ID, 3, 2, 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	today := models.DateOnly(time.Now())
	query := fmt.Sprintf("?from=%s&to=%s&hotel_id=%d",
		today.Format(models.DateLayout), today.AddDate(0, 0, 7).Format(models.DateLayout), env.hotel.ID)

	resp = env.do(t, http.MethodGet, "/api/v1/reports/bookings"+query, env.token(t, env.admin), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(data) > 0 && string(data[:2]) == "PK")

	resp = env.do(t, http.MethodGet, "/api/v1/reports/bookings"+query, env.token(t, env.guest), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/reports/bookings?to=2030-01-01", env.token(t, env.admin), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInquiryEndpoint(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	path := fmt.Sprintf("/api/v1/properties/%d/inquiries", env.property.ID)

	resp := env.do(t, http.MethodPost, path, "", `{"name":"Bob","email":"bob@example.com","message":"Is it still available?"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var inq models.Inquiry
	decodeBody(t, resp, &inq)
	assert.Equal(t, models.InquiryPending, inq.Status)

	resp = env.do(t, http.MethodPost, path, "", `{"name":"Bob","email":"not-an-email","message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/properties/999/inquiries", "", `{"name":"Bob","email":"bob@example.com","message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBlogEndpoints(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	adminToken := env.token(t, env.admin)

	resp := env.do(t, http.MethodPost, "/api/v1/blog", env.token(t, env.guest), `{"title":"Hi","content":"x"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/blog", adminToken, `{"title":"Market update","content":"Prices are up."}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.BlogPost
	decodeBody(t, resp, &post)
	assert.False(t, post.IsPublished)

	countPosts := func(token string) int {
		resp := env.do(t, http.MethodGet, "/api/v1/blog", token, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Posts []*models.BlogPost `json:"posts"`
		}
		decodeBody(t, resp, &body)
		return len(body.Posts)
	}
	assert.Equal(t, 0, countPosts(""))
	assert.Equal(t, 1, countPosts(adminToken))

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/blog/%d/publish", post.ID), adminToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &post)
	assert.True(t, post.IsPublished)
	assert.NotNil(t, post.PublishedDate)
	assert.Equal(t, 1, countPosts(""))
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 1}})

	resp := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidDateRange, http.StatusBadRequest},
		{domain.ErrNoDashboardForRole, http.StatusBadRequest},
		{domain.ErrCapacityExceeded, http.StatusConflict},
		{domain.ErrTooLateToCancel, http.StatusConflict},
		{domain.ErrAlreadyCancelled, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{fmt.Errorf("update: %w", domain.ErrConcurrentModification), http.StatusConflict},
		{fmt.Errorf("booking 4: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, statusFor(tc.err), tc.err.Error())
	}
}
