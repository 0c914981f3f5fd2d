package database

import (
	"context"
	"fmt"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/models"
)

const bookingSelect = `SELECT b.id, b.room_type_id, COALESCE(rt.name, ''), COALESCE(rt.hotel_id, 0), b.user_id,
                 b.check_in_date, b.check_out_date, b.guest_count, b.status, b.total_price,
                 b.special_requests, b.created_at, b.updated_at, b.version
          FROM bookings b LEFT JOIN room_types rt ON rt.id = b.room_type_id`

// CreateBookingWithLock stores the booking only if admit accepts it. The room
// type and its overlapping active bookings are read and the row is inserted
// within one immediate transaction, so concurrent creates against the same
// inventory are serialized.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking, admit domain.AdmitFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rt, err := getRoomType(ctx, tx, booking.RoomTypeID)
	if err != nil {
		return err
	}

	overlapping, err := activeBookings(ctx, tx, booking.RoomTypeID, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}

	if admit != nil {
		if err := admit(rt, overlapping); err != nil {
			return err
		}
	}

	if booking.Status == "" {
		booking.Status = models.StatusPending
	}

	if err := insertBooking(ctx, tx, booking); err != nil {
		return err
	}
	booking.RoomTypeName = rt.Name
	booking.HotelID = rt.HotelID

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

// CreateBooking inserts a booking without any capacity check. It is meant for
// seeding and imports.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	return insertBooking(ctx, db, booking)
}

func insertBooking(ctx context.Context, q querier, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				room_type_id, user_id, check_in_date, check_out_date, guest_count,
				status, total_price, special_requests, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx, query,
		booking.RoomTypeID,
		booking.UserID,
		booking.CheckIn.Format(models.DateLayout),
		booking.CheckOut.Format(models.DateLayout),
		booking.GuestCount,
		booking.Status,
		booking.TotalPrice,
		booking.SpecialRequests,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return queryBookings(ctx, db, bookingSelect+` WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC`, userID)
}

func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	return queryBookings(ctx, db, bookingSelect+` ORDER BY b.created_at DESC, b.id DESC`)
}

// GetBookingsByDateRange returns bookings whose stay intersects [start, end].
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE b.check_in_date <= ? AND b.check_out_date > ? ORDER BY b.check_in_date, b.id`
	return queryBookings(ctx, db, query, end.Format(models.DateLayout), start.Format(models.DateLayout))
}

// GetActiveBookings returns pending and confirmed bookings of the room type
// whose stay overlaps [from, to).
func (db *DB) GetActiveBookings(ctx context.Context, roomTypeID int64, from, to time.Time) ([]*models.Booking, error) {
	return activeBookings(ctx, db, roomTypeID, from, to)
}

func activeBookings(ctx context.Context, q querier, roomTypeID int64, from, to time.Time) ([]*models.Booking, error) {
	query := bookingSelect + `
          WHERE b.room_type_id = ?
            AND b.status IN (?, ?)
            AND b.check_in_date < ?
            AND b.check_out_date > ?
          ORDER BY b.check_in_date, b.id`
	return queryBookings(ctx, q, query,
		roomTypeID,
		models.StatusPending, models.StatusConfirmed,
		to.Format(models.DateLayout),
		from.Format(models.DateLayout),
	)
}

func queryBookings(ctx context.Context, q querier, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var checkIn, checkOut string
	err := row.Scan(
		&b.ID, &b.RoomTypeID, &b.RoomTypeName, &b.HotelID, &b.UserID,
		&checkIn, &checkOut, &b.GuestCount, &b.Status, &b.TotalPrice,
		&b.SpecialRequests, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}

	if b.CheckIn, err = models.ParseDate(checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check-in date %s: %w", checkIn, err)
	}
	if b.CheckOut, err = models.ParseDate(checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check-out date %s: %w", checkOut, err)
	}
	return &b, nil
}
