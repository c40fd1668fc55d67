package export

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"parilka/internal/database"
	"parilka/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookingsReport(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SeedRooms(ctx, []string{models.RoomTrainingRoom1}))
	room, err := db.GetRoomByName(ctx, models.RoomTrainingRoom1)
	require.NoError(t, err)

	start := time.Date(2026, 10, 10, 10, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		ID:           uuid.NewString(),
		UserID:       "user-1",
		RoomID:       room.ID,
		MembershipID: "mem-1",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Status:       models.StatusPending,
	}
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	exporter := NewExporter(db, db, &logger)

	var buf bytes.Buffer
	periodStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, exporter.WriteBookingsReport(ctx, &buf, periodStart, periodEnd))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Bookings", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	id, err := f.GetCellValue("Bookings", "A3")
	require.NoError(t, err)
	assert.Equal(t, booking.ID, id)

	roomName, err := f.GetCellValue("Bookings", "B3")
	require.NoError(t, err)
	assert.Equal(t, models.RoomTrainingRoom1, roomName)

	status, err := f.GetCellValue("Bookings", "F3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)
}

func TestWriteBookingsReportEmptyPeriod(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	exporter := NewExporter(db, db, &logger)

	var buf bytes.Buffer
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, exporter.WriteBookingsReport(context.Background(), &buf, start, start.AddDate(0, 1, 0)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	// Header rows are present even when no bookings fall in the period.
	header, err := f.GetCellValue("Bookings", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	empty, err := f.GetCellValue("Bookings", "A3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
