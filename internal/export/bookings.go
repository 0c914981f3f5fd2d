// Package export renders bookings into xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"estatehub/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	listSheet = "Bookings"
	gridSheet = "Occupancy"
)

var listHeaders = []string{
	"ID", "Hotel ID", "Room Type", "Guest ID", "Check-in", "Check-out",
	"Nights", "Guests", "Total", "Status", "Created At",
}

// WriteBookingsReport writes a workbook with a flat booking list and a
// room-type by night occupancy grid covering from..to inclusive. Room types
// without a known quantity are taken from the bookings themselves.
func WriteBookingsReport(w io.Writer, from, to time.Time, bookings []*models.Booking, roomTypes []*models.RoomType) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", listSheet); err != nil {
		return fmt.Errorf("error renaming sheet: %w", err)
	}
	if err := writeList(f, bookings); err != nil {
		return err
	}

	if _, err := f.NewSheet(gridSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeGrid(f, models.DateOnly(from), models.DateOnly(to), bookings, gridRows(bookings, roomTypes)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeList(f *excelize.File, bookings []*models.Booking) error {
	for i, h := range listHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(listSheet, cell, h); err != nil {
			return err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(listHeaders))
	_ = f.SetCellStyle(listSheet, "A1", lastCol+"1", header)

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			b.HotelID,
			b.RoomTypeName,
			b.UserID,
			b.CheckIn.Format(models.DateLayout),
			b.CheckOut.Format(models.DateLayout),
			b.Nights(),
			b.GuestCount,
			b.TotalPrice.InexactFloat64(),
			b.Status,
			b.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(listSheet, cell, &values); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(listSheet, "A", "B", 10)
	_ = f.SetColWidth(listSheet, "C", "C", 22)
	_ = f.SetColWidth(listSheet, "D", lastCol, 14)
	return nil
}

type gridRow struct {
	id       int64
	name     string
	quantity int
}

func gridRows(bookings []*models.Booking, roomTypes []*models.RoomType) []gridRow {
	rows := make([]gridRow, 0, len(roomTypes))
	seen := make(map[int64]bool)
	for _, rt := range roomTypes {
		rows = append(rows, gridRow{id: rt.ID, name: rt.Name, quantity: rt.Quantity})
		seen[rt.ID] = true
	}

	var extra []gridRow
	for _, b := range bookings {
		if seen[b.RoomTypeID] {
			continue
		}
		seen[b.RoomTypeID] = true
		name := b.RoomTypeName
		if name == "" {
			name = fmt.Sprintf("Room type %d", b.RoomTypeID)
		}
		extra = append(extra, gridRow{id: b.RoomTypeID, name: name})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].id < extra[j].id })
	return append(rows, extra...)
}

func writeGrid(f *excelize.File, from, to time.Time, bookings []*models.Booking, rows []gridRow) error {
	_ = f.SetCellValue(gridSheet, "A1", fmt.Sprintf("Period: %s - %s",
		from.Format(models.DateLayout), to.Format(models.DateLayout)))

	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	dateStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	rowStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	styles, err := newCellStyles(f)
	if err != nil {
		return err
	}

	col := 2
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(gridSheet, cell, d.Format("02.01"))
		_ = f.SetCellStyle(gridSheet, cell, cell, dateStyle)
		col++
	}
	lastCol, _ := excelize.ColumnNumberToName(col - 1)
	_ = f.MergeCell(gridSheet, "A1", lastCol+"1")
	_ = f.SetCellStyle(gridSheet, "A1", "A1", title)

	byRoomType := make(map[int64][]*models.Booking)
	for _, b := range bookings {
		if b.IsActive() || b.Status == models.StatusCompleted {
			byRoomType[b.RoomTypeID] = append(byRoomType[b.RoomTypeID], b)
		}
	}

	for i, r := range rows {
		row := i + 3
		label := r.name
		if r.quantity > 0 {
			label = fmt.Sprintf("%s (%d)", r.name, r.quantity)
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(gridSheet, cell, label)
		_ = f.SetCellStyle(gridSheet, cell, cell, rowStyle)

		col := 2
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			night := nightBookings(byRoomType[r.id], d)
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(gridSheet, cell, cellText(night, r.quantity))
			_ = f.SetCellStyle(gridSheet, cell, cell, styles.pick(night, r.quantity))
			col++
		}
	}

	_ = f.SetColWidth(gridSheet, "A", "A", 25)
	if col > 2 {
		_ = f.SetColWidth(gridSheet, "B", lastCol, 12)
	}
	return nil
}

// nightBookings returns the bookings that occupy the night starting on d.
func nightBookings(bookings []*models.Booking, d time.Time) []*models.Booking {
	var out []*models.Booking
	for _, b := range bookings {
		if !d.Before(b.CheckIn) && d.Before(b.CheckOut) {
			out = append(out, b)
		}
	}
	return out
}

func cellText(night []*models.Booking, quantity int) string {
	if quantity > 0 {
		return fmt.Sprintf("%d/%d", len(night), quantity)
	}
	return fmt.Sprintf("%d", len(night))
}

type cellStyles struct {
	free, full, pending, confirmed int
}

func newCellStyles(f *excelize.File) (*cellStyles, error) {
	mk := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
		})
	}
	var s cellStyles
	var err error
	if s.free, err = mk("#FFFFFF"); err != nil {
		return nil, err
	}
	if s.full, err = mk("#FFC7CE"); err != nil {
		return nil, err
	}
	if s.pending, err = mk("#FFEB9C"); err != nil {
		return nil, err
	}
	if s.confirmed, err = mk("#C6EFCE"); err != nil {
		return nil, err
	}
	return &s, nil
}

// pick colours a night: white when free, red when sold out, yellow while any
// booking is still pending, green otherwise.
func (s *cellStyles) pick(night []*models.Booking, quantity int) int {
	if len(night) == 0 {
		return s.free
	}
	if quantity > 0 && len(night) >= quantity {
		return s.full
	}
	for _, b := range night {
		if b.Status == models.StatusPending {
			return s.pending
		}
	}
	return s.confirmed
}
