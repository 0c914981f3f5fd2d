package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/models"

	"github.com/shopspring/decimal"
)

// CountUsers counts accounts with the role, or all accounts for an empty role.
func (db *DB) CountUsers(ctx context.Context, role models.Role) (int64, error) {
	query := `SELECT COUNT(*) FROM users`
	var args []interface{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, string(role))
	}
	return db.count(ctx, "users", query, args...)
}

func (db *DB) RecentUsers(ctx context.Context, limit int) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY date_joined DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountProperties counts listings, scoped to an owner when ownerID is non-zero.
func (db *DB) CountProperties(ctx context.Context, ownerID int64, publishedOnly bool) (int64, error) {
	var where []string
	var args []interface{}
	if ownerID != 0 {
		where = append(where, "owner_id = ?")
		args = append(args, ownerID)
	}
	if publishedOnly {
		where = append(where, "is_published = 1")
	}
	return db.count(ctx, "properties", `SELECT COUNT(*) FROM properties`+whereClause(where), args...)
}

// BookingTotals returns the number of bookings and the sum of their total
// price within the filter's scope. Every status is counted.
func (db *DB) BookingTotals(ctx context.Context, filter domain.BookingFilter) (int64, decimal.Decimal, error) {
	query := `SELECT b.total_price FROM bookings b JOIN room_types rt ON rt.id = b.room_type_id`
	var where []string
	var args []interface{}

	if filter.HotelID != 0 {
		where = append(where, "rt.hotel_id = ?")
		args = append(args, filter.HotelID)
	}
	if filter.PropertyOwnerID != 0 {
		query += ` JOIN hotels h ON h.id = rt.hotel_id JOIN properties p ON p.id = h.property_id`
		where = append(where, "p.owner_id = ?")
		args = append(args, filter.PropertyOwnerID)
	}

	rows, err := db.QueryContext(ctx, query+whereClause(where), args...)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to sum bookings: %w", err)
	}
	defer rows.Close()

	var count int64
	total := decimal.Zero
	for rows.Next() {
		var price decimal.Decimal
		if err := rows.Scan(&price); err != nil {
			return 0, decimal.Zero, fmt.Errorf("failed to scan booking price: %w", err)
		}
		count++
		total = total.Add(price)
	}
	if err := rows.Err(); err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to iterate booking prices: %w", err)
	}
	return count, total, nil
}

// CountInquiries counts inquiries on properties owned by ownerID (all
// properties when zero) with the given status (any when empty).
func (db *DB) CountInquiries(ctx context.Context, ownerID int64, status string) (int64, error) {
	where, args := ownedScope("i", ownerID, status)
	query := `SELECT COUNT(*) FROM inquiries i JOIN properties p ON p.id = i.property_id` + whereClause(where)
	return db.count(ctx, "inquiries", query, args...)
}

func (db *DB) RecentInquiries(ctx context.Context, ownerID int64, limit int) ([]*models.Inquiry, error) {
	where, args := ownedScope("i", ownerID, "")
	query := `SELECT ` + inquiryColumns + ` FROM inquiries i JOIN properties p ON p.id = i.property_id` +
		whereClause(where) + ` ORDER BY i.created_at DESC, i.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent inquiries: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Inquiry, 0, limit)
	for rows.Next() {
		var inq models.Inquiry
		if err := rows.Scan(
			&inq.ID, &inq.PropertyID, &inq.Name, &inq.Email, &inq.Phone, &inq.Message, &inq.Status, &inq.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		out = append(out, &inq)
	}
	return out, rows.Err()
}

func (db *DB) CountViewings(ctx context.Context, ownerID int64, status string) (int64, error) {
	where, args := ownedScope("v", ownerID, status)
	query := `SELECT COUNT(*) FROM viewings v JOIN properties p ON p.id = v.property_id` + whereClause(where)
	return db.count(ctx, "viewings", query, args...)
}

// HotelBookingsInWindow returns the hotel's bookings with one of the statuses
// that are in house at some point of [from, to]: check-in on or before to and
// check-out on or after from. Results are ordered by check-in.
func (db *DB) HotelBookingsInWindow(ctx context.Context, hotelID int64, from, to time.Time, statuses []string) ([]*models.Booking, error) {
	where := []string{"rt.hotel_id = ?", "b.check_in_date <= ?", "b.check_out_date >= ?"}
	args := []interface{}{hotelID, to.Format(models.DateLayout), from.Format(models.DateLayout)}

	if len(statuses) > 0 {
		where = append(where, "b.status IN ("+placeholders(len(statuses))+")")
		for _, s := range statuses {
			args = append(args, s)
		}
	}

	query := bookingSelect + whereClause(where) + ` ORDER BY b.check_in_date, b.id`
	return queryBookings(ctx, db, query, args...)
}

func (db *DB) count(ctx context.Context, what, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func ownedScope(alias string, ownerID int64, status string) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if ownerID != 0 {
		where = append(where, "p.owner_id = ?")
		args = append(args, ownerID)
	}
	if status != "" {
		where = append(where, alias+".status = ?")
		args = append(args, status)
	}
	return where, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
