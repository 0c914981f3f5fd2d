package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"estatehub/internal/domain"
	"estatehub/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// Inventory is the YAML seed of staff accounts, listings, hotels and room types.
// Records reference each other by email, slug or name instead of ids.
type Inventory struct {
	Users      []SeedUser     `yaml:"users"`
	Properties []SeedProperty `yaml:"properties"`
	Hotels     []SeedHotel    `yaml:"hotels"`
}

type SeedUser struct {
	Email     string      `yaml:"email"`
	Password  string      `yaml:"password"`
	FirstName string      `yaml:"first_name"`
	LastName  string      `yaml:"last_name"`
	Phone     string      `yaml:"phone"`
	Role      models.Role `yaml:"role"`
}

type SeedProperty struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	OwnerEmail  string `yaml:"owner_email"`
	City        string `yaml:"city"`
	ListingType string `yaml:"listing_type"`
	Price       string `yaml:"price"`
	Published   bool   `yaml:"published"`
}

type SeedHotel struct {
	Name         string         `yaml:"name"`
	City         string         `yaml:"city"`
	Country      string         `yaml:"country"`
	StarRating   int            `yaml:"star_rating"`
	ManagerEmail string         `yaml:"manager_email"`
	PropertySlug string         `yaml:"property_slug"`
	Active       bool           `yaml:"active"`
	RoomTypes    []SeedRoomType `yaml:"room_types"`
}

type SeedRoomType struct {
	Name          string `yaml:"name"`
	Quantity      int    `yaml:"quantity"`
	PricePerNight string `yaml:"price_per_night"`
	MaxGuests     int    `yaml:"max_guests"`
	Available     bool   `yaml:"available"`
}

// SeedResult counts the records created by SeedInventory.
type SeedResult struct {
	Users      int
	Properties int
	Hotels     int
	RoomTypes  int
}

// PasswordHasher turns a plaintext seed password into a stored hash.
type PasswordHasher func(password string) (string, error)

func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	return &inv, nil
}

// SeedInventory inserts the records of inv that are not present yet. Running it
// twice against the same database creates nothing the second time.
func (db *DB) SeedInventory(ctx context.Context, inv *Inventory, hash PasswordHasher) (SeedResult, error) {
	var res SeedResult
	if inv == nil {
		return res, nil
	}

	users := make(map[string]int64, len(inv.Users))
	for _, su := range inv.Users {
		id, created, err := db.seedUser(ctx, su, hash)
		if err != nil {
			return res, err
		}
		users[su.Email] = id
		if created {
			res.Users++
		}
	}

	lookupUser := func(email string) (int64, error) {
		if id, ok := users[email]; ok {
			return id, nil
		}
		u, err := db.GetUserByEmail(ctx, email)
		if err != nil {
			return 0, err
		}
		users[email] = u.ID
		return u.ID, nil
	}

	for _, sp := range inv.Properties {
		created, err := db.seedProperty(ctx, sp, lookupUser)
		if err != nil {
			return res, err
		}
		if created {
			res.Properties++
		}
	}

	for _, sh := range inv.Hotels {
		hotelCreated, rooms, err := db.seedHotel(ctx, sh, lookupUser)
		if err != nil {
			return res, err
		}
		if hotelCreated {
			res.Hotels++
		}
		res.RoomTypes += rooms
	}

	db.logger.Info().
		Int("users", res.Users).
		Int("properties", res.Properties).
		Int("hotels", res.Hotels).
		Int("room_types", res.RoomTypes).
		Msg("Inventory seeded")
	return res, nil
}

func (db *DB) seedUser(ctx context.Context, su SeedUser, hash PasswordHasher) (int64, bool, error) {
	existing, err := db.GetUserByEmail(ctx, su.Email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, false, err
	}
	if !su.Role.Valid() {
		return 0, false, fmt.Errorf("seed user %s: unknown role %q", su.Email, su.Role)
	}

	u := &models.User{
		Email:     su.Email,
		FirstName: su.FirstName,
		LastName:  su.LastName,
		Phone:     su.Phone,
		Role:      su.Role,
		IsActive:  true,
	}
	if su.Password != "" {
		if u.PasswordHash, err = hash(su.Password); err != nil {
			return 0, false, fmt.Errorf("seed user %s: %w", su.Email, err)
		}
	}
	if err := db.CreateUser(ctx, u); err != nil {
		return 0, false, err
	}
	return u.ID, true, nil
}

func (db *DB) seedProperty(ctx context.Context, sp SeedProperty, lookupUser func(string) (int64, error)) (bool, error) {
	if _, err := db.getPropertyBySlug(ctx, sp.Slug); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	ownerID, err := lookupUser(sp.OwnerEmail)
	if err != nil {
		return false, fmt.Errorf("seed property %s: owner: %w", sp.Slug, err)
	}
	price, err := parseSeedPrice(sp.Price)
	if err != nil {
		return false, fmt.Errorf("seed property %s: %w", sp.Slug, err)
	}

	return true, db.CreateProperty(ctx, &models.Property{
		Title:       sp.Title,
		Slug:        sp.Slug,
		OwnerID:     ownerID,
		City:        sp.City,
		ListingType: sp.ListingType,
		Price:       price,
		IsPublished: sp.Published,
	})
}

func (db *DB) seedHotel(ctx context.Context, sh SeedHotel, lookupUser func(string) (int64, error)) (bool, int, error) {
	hotel, err := db.getHotelByName(ctx, sh.Name)
	created := false
	switch {
	case errors.Is(err, domain.ErrNotFound):
		managerID, err := lookupUser(sh.ManagerEmail)
		if err != nil {
			return false, 0, fmt.Errorf("seed hotel %s: manager: %w", sh.Name, err)
		}
		hotel = &models.Hotel{
			Name:       sh.Name,
			City:       sh.City,
			Country:    sh.Country,
			StarRating: sh.StarRating,
			ManagerID:  managerID,
			IsActive:   sh.Active,
		}
		if sh.PropertySlug != "" {
			p, err := db.getPropertyBySlug(ctx, sh.PropertySlug)
			if err != nil {
				return false, 0, fmt.Errorf("seed hotel %s: property: %w", sh.Name, err)
			}
			hotel.PropertyID = &p.ID
		}
		if err := db.CreateHotel(ctx, hotel); err != nil {
			return false, 0, err
		}
		created = true
	case err != nil:
		return false, 0, err
	}

	existing, err := db.GetRoomTypesByHotel(ctx, hotel.ID)
	if err != nil {
		return created, 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, rt := range existing {
		have[rt.Name] = true
	}

	rooms := 0
	for _, srt := range sh.RoomTypes {
		if have[srt.Name] {
			continue
		}
		price, err := parseSeedPrice(srt.PricePerNight)
		if err != nil {
			return created, rooms, fmt.Errorf("seed room type %s/%s: %w", sh.Name, srt.Name, err)
		}
		rt := &models.RoomType{
			HotelID:       hotel.ID,
			Name:          srt.Name,
			Quantity:      srt.Quantity,
			PricePerNight: price,
			MaxGuests:     srt.MaxGuests,
			IsAvailable:   srt.Available,
		}
		if err := db.CreateRoomType(ctx, rt); err != nil {
			return created, rooms, err
		}
		rooms++
	}
	return created, rooms, nil
}

func (db *DB) getPropertyBySlug(ctx context.Context, slug string) (*models.Property, error) {
	var p models.Property
	err := db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE slug = ?`, slug).Scan(
		&p.ID, &p.Title, &p.Slug, &p.OwnerID, &p.City, &p.ListingType, &p.Price, &p.IsPublished, &p.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "property", slug)
	}
	return &p, nil
}

func (db *DB) getHotelByName(ctx context.Context, name string) (*models.Hotel, error) {
	h, err := scanHotel(db.QueryRowContext(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE name = ? ORDER BY id LIMIT 1`, name))
	if err != nil {
		return nil, notFound(err, "hotel", name)
	}
	return h, nil
}

func parseSeedPrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d, nil
}
