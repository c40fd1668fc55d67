package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"parilka/internal/domain"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter формирует Excel-отчет по бронированиям за период.
type Exporter struct {
	bookings domain.BookingStore
	rooms    domain.RoomStore
	logger   *zerolog.Logger
}

func NewExporter(bookings domain.BookingStore, rooms domain.RoomStore, logger *zerolog.Logger) *Exporter {
	return &Exporter{bookings: bookings, rooms: rooms, logger: logger}
}

// WriteBookingsReport пишет xlsx-отчет за [startDate, endDate) в w.
func (e *Exporter) WriteBookingsReport(ctx context.Context, w io.Writer, startDate, endDate time.Time) error {
	bookings, err := e.bookings.GetBookingsByRange(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("error getting bookings: %w", err)
	}

	rooms, err := e.rooms.GetActiveRooms(ctx)
	if err != nil {
		return fmt.Errorf("error getting rooms: %w", err)
	}
	roomNames := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Период: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))
	_ = f.MergeCell(sheetName, "A1", "G1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	headers := []string{"ID", "Комната", "Пользователь", "Начало", "Конец", "Статус", "Создано"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	for row, booking := range bookings {
		roomName := roomNames[booking.RoomID]
		if roomName == "" {
			roomName = booking.RoomID
		}
		values := []any{
			booking.ID,
			roomName,
			booking.UserID,
			booking.StartTime.Format("02.01.2006 15:04"),
			booking.EndTime.Format("02.01.2006 15:04"),
			booking.Status,
			booking.CreatedAt.Format("02.01.2006 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "G", 20)
	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	e.logger.Info().Int("bookings", len(bookings)).Msg("bookings report exported")
	return nil
}
