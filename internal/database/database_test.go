package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"estatehub/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	admin    *models.User
	agent    *models.User
	manager  *models.User
	buyer    *models.User
	property *models.Property
	hotel    *models.Hotel
	double   *models.RoomType
	suite    *models.RoomType
}

func seed(t *testing.T, db *DB) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{}

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mk := func(email string, role models.Role, joinedDay int) *models.User {
		u := &models.User{Email: email, FirstName: string(role), Role: role, IsActive: true, DateJoined: base.AddDate(0, 0, joinedDay)}
		require.NoError(t, db.CreateUser(ctx, u))
		return u
	}
	f.admin = mk("admin@example.com", models.RoleAdmin, 0)
	f.agent = mk("agent@example.com", models.RoleAgent, 1)
	f.manager = mk("manager@example.com", models.RoleHotelManager, 2)
	f.buyer = mk("buyer@example.com", models.RoleBuyer, 3)

	f.property = &models.Property{
		Title: "Seaside Resort", Slug: "seaside-resort", OwnerID: f.agent.ID,
		City: "Lisbon", ListingType: "rent", Price: decimal.NewFromInt(1), IsPublished: true,
	}
	require.NoError(t, db.CreateProperty(ctx, f.property))

	f.hotel = &models.Hotel{Name: "Seaside", City: "Lisbon", ManagerID: f.manager.ID, PropertyID: &f.property.ID, IsActive: true}
	require.NoError(t, db.CreateHotel(ctx, f.hotel))

	f.double = &models.RoomType{HotelID: f.hotel.ID, Name: "Double", Quantity: 2, PricePerNight: decimal.RequireFromString("120.50"), MaxGuests: 2, IsAvailable: true}
	require.NoError(t, db.CreateRoomType(ctx, f.double))

	f.suite = &models.RoomType{HotelID: f.hotel.ID, Name: "Suite", Quantity: 1, PricePerNight: decimal.NewFromInt(300), MaxGuests: 4, IsAvailable: false}
	require.NoError(t, db.CreateRoomType(ctx, f.suite))

	return f
}

func date(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestNewDB_ReopenKeepsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	require.NoError(t, db.CreateUser(context.Background(), &models.User{Email: "a@b.c", Role: models.RoleBuyer}))
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	n, err := db.CountUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_busy_timeout=100&_txlock=immediate&_foreign_keys=on", dsn(":memory:", 100))
	assert.Equal(t, "file:/tmp/x.db?_busy_timeout=5&_txlock=immediate&_foreign_keys=on", dsn("/tmp/x.db", 5))
	assert.Equal(t, "file:x.db?cache=shared&_busy_timeout=5&_txlock=immediate&_foreign_keys=on", dsn("file:x.db?cache=shared", 5))
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.Close() // closed handle makes every call fail

	ctx := context.Background()

	t.Run("CreateBookingWithLock", func(t *testing.T) {
		err := db.CreateBookingWithLock(ctx, &models.Booking{}, nil)
		assert.Error(t, err)
	})

	t.Run("GetBookingsByDateRange", func(t *testing.T) {
		_, err := db.GetBookingsByDateRange(ctx, time.Now(), time.Now())
		assert.Error(t, err)
	})

	t.Run("CountUsers", func(t *testing.T) {
		_, err := db.CountUsers(ctx, models.RoleAdmin)
		assert.Error(t, err)
	})

	t.Run("CreateSyncTask", func(t *testing.T) {
		assert.Error(t, db.CreateSyncTask(ctx, &models.SyncTask{}))
	})
}
