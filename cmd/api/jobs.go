package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"estatehub/internal/config"
	"estatehub/internal/database"
	"estatehub/internal/export"
	"estatehub/internal/google"
	"estatehub/internal/models"

	"github.com/rs/zerolog"
)

func resyncSheets(ctx context.Context, db *database.DB, sheets *google.SheetsService, logger *zerolog.Logger) error {
	if sheets == nil {
		return errors.New("google sheets is not configured")
	}

	bookings, err := db.GetAllBookings(ctx)
	if err != nil {
		return err
	}
	if err := sheets.ReplaceBookingsSheet(ctx, bookings); err != nil {
		return err
	}

	logger.Info().Int("bookings", len(bookings)).Msg("bookings sheet rebuilt")
	return nil
}

func exportReport(ctx context.Context, db *database.DB, cfg config.ExportConfig, days int, logger *zerolog.Logger) error {
	from := models.DateOnly(time.Now())
	to := from.AddDate(0, 0, days)

	bookings, err := db.GetBookingsByDateRange(ctx, from, to)
	if err != nil {
		return err
	}

	hotels, err := db.ListHotels(ctx)
	if err != nil {
		return err
	}
	var roomTypes []*models.RoomType
	for _, h := range hotels {
		rts, err := db.GetRoomTypesByHotel(ctx, h.ID)
		if err != nil {
			return err
		}
		roomTypes = append(roomTypes, rts...)
	}

	dir := cfg.Path
	if dir == "" {
		dir = "exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("bookings_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102")))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := export.WriteBookingsReport(file, from, to, bookings, roomTypes); err != nil {
		return err
	}

	logger.Info().Str("path", path).Int("bookings", len(bookings)).Msg("bookings report written")
	return nil
}
