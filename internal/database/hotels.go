package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"estatehub/internal/models"
)

const hotelColumns = `id, name, city, country, star_rating, manager_id, property_id, is_active, created_at`

const roomTypeColumns = `id, hotel_id, name, quantity, price_per_night, max_guests, is_available`

func (db *DB) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	query := `INSERT INTO hotels (name, city, country, star_rating, manager_id, property_id, is_active, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()

	var propertyID sql.NullInt64
	if hotel.PropertyID != nil {
		propertyID = sql.NullInt64{Int64: *hotel.PropertyID, Valid: true}
	}

	result, err := db.ExecContext(ctx, query,
		hotel.Name, hotel.City, hotel.Country, hotel.StarRating,
		hotel.ManagerID, propertyID, hotel.IsActive, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	hotel.ID = id
	hotel.CreatedAt = now
	return nil
}

func (db *DB) GetHotel(ctx context.Context, id int64) (*models.Hotel, error) {
	hotel, err := scanHotel(db.QueryRowContext(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "hotel", id)
	}
	return hotel, nil
}

// GetHotelByManager returns the hotel managed by the user. When a manager has
// more than one hotel the oldest one wins.
func (db *DB) GetHotelByManager(ctx context.Context, managerID int64) (*models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE manager_id = ? ORDER BY id LIMIT 1`
	hotel, err := scanHotel(db.QueryRowContext(ctx, query, managerID))
	if err != nil {
		return nil, notFound(err, "hotel for manager", managerID)
	}
	return hotel, nil
}

func (db *DB) ListHotels(ctx context.Context) ([]*models.Hotel, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+hotelColumns+` FROM hotels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*models.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

func (db *DB) CreateRoomType(ctx context.Context, rt *models.RoomType) error {
	query := `INSERT INTO room_types (hotel_id, name, quantity, price_per_night, max_guests, is_available)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		rt.HotelID, rt.Name, rt.Quantity, rt.PricePerNight, rt.MaxGuests, rt.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("failed to create room type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rt.ID = id
	return nil
}

func (db *DB) GetRoomType(ctx context.Context, id int64) (*models.RoomType, error) {
	return getRoomType(ctx, db, id)
}

func getRoomType(ctx context.Context, q querier, id int64) (*models.RoomType, error) {
	rt, err := scanRoomType(q.QueryRowContext(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "room type", id)
	}
	return rt, nil
}

func (db *DB) GetRoomTypesByHotel(ctx context.Context, hotelID int64) ([]*models.RoomType, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE hotel_id = ? ORDER BY id`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room types: %w", err)
	}
	defer rows.Close()

	var out []*models.RoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room type: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (db *DB) SetRoomTypeAvailable(ctx context.Context, id int64, available bool) error {
	result, err := db.ExecContext(ctx, `UPDATE room_types SET is_available = ? WHERE id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("failed to update room type: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound(sql.ErrNoRows, "room type", id)
	}
	return nil
}

func scanHotel(row rowScanner) (*models.Hotel, error) {
	var h models.Hotel
	var propertyID sql.NullInt64
	err := row.Scan(
		&h.ID, &h.Name, &h.City, &h.Country, &h.StarRating,
		&h.ManagerID, &propertyID, &h.IsActive, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if propertyID.Valid {
		id := propertyID.Int64
		h.PropertyID = &id
	}
	return &h, nil
}

func scanRoomType(row rowScanner) (*models.RoomType, error) {
	var rt models.RoomType
	err := row.Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Quantity, &rt.PricePerNight, &rt.MaxGuests, &rt.IsAvailable)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}
