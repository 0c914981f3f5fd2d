package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estatehub/internal/models"
)

const userColumns = `id, email, first_name, last_name, phone, role, password_hash, is_active, date_joined`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, first_name, last_name, phone, role, password_hash, is_active, date_joined)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	joined := user.DateJoined
	if joined.IsZero() {
		joined = time.Now().UTC()
	}
	result, err := db.ExecContext(ctx, query,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.FirstName,
		user.LastName,
		user.Phone,
		string(user.Role),
		user.PasswordHash,
		user.IsActive,
		joined,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.DateJoined = joined
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return user, nil
}

func (db *DB) GetUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to get users by role: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var role string
	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Phone,
		&role, &user.PasswordHash, &user.IsActive, &user.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}
