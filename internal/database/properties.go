package database

import (
	"context"
	"fmt"
	"time"

	"estatehub/internal/models"
)

const propertyColumns = `id, title, slug, owner_id, city, listing_type, price, is_published, created_at`

const inquiryColumns = `i.id, i.property_id, i.name, i.email, i.phone, i.message, i.status, i.created_at`

func (db *DB) CreateProperty(ctx context.Context, p *models.Property) error {
	query := `INSERT INTO properties (title, slug, owner_id, city, listing_type, price, is_published, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		p.Title, p.Slug, p.OwnerID, p.City, p.ListingType, p.Price, p.IsPublished, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	return nil
}

func (db *DB) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	var p models.Property
	err := db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.OwnerID, &p.City, &p.ListingType, &p.Price, &p.IsPublished, &p.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "property", id)
	}
	return &p, nil
}

func (db *DB) CreateInquiry(ctx context.Context, inq *models.Inquiry) error {
	query := `INSERT INTO inquiries (property_id, name, email, phone, message, status, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	if inq.Status == "" {
		inq.Status = models.InquiryPending
	}
	created := inq.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	result, err := db.ExecContext(ctx, query,
		inq.PropertyID, inq.Name, inq.Email, inq.Phone, inq.Message, inq.Status, created,
	)
	if err != nil {
		return fmt.Errorf("failed to create inquiry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	inq.ID = id
	inq.CreatedAt = created
	return nil
}

func (db *DB) CreateViewing(ctx context.Context, v *models.Viewing) error {
	query := `INSERT INTO viewings (property_id, user_id, scheduled_at, status) VALUES (?, ?, ?, ?)`
	if v.Status == "" {
		v.Status = models.ViewingScheduled
	}
	result, err := db.ExecContext(ctx, query, v.PropertyID, v.UserID, v.ScheduledAt.UTC(), v.Status)
	if err != nil {
		return fmt.Errorf("failed to create viewing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	v.ID = id
	return nil
}
