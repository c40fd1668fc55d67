package database

import (
	"context"
	"testing"
	"time"

	"parilka/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(roomID string, start, end time.Time) *models.Booking {
	return &models.Booking{
		ID:           uuid.NewString(),
		UserID:       "user-1",
		RoomID:       roomID,
		MembershipID: "mem-1",
		StartTime:    start,
		EndTime:      end,
		Status:       models.StatusPending,
	}
}

func TestCreateBookingWithLock(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	at := func(hour, min int) time.Time { return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute) }

	t.Run("Insert", func(t *testing.T) {
		b := newTestBooking("room-1", at(10, 0), at(11, 0))
		require.NoError(t, db.CreateBookingWithLock(ctx, b))
		assert.False(t, b.CreatedAt.IsZero())

		got, err := db.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, at(10, 0), got.StartTime)
		assert.Equal(t, at(11, 0), got.EndTime)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Equal(t, "mem-1", got.MembershipID)
	})

	t.Run("BackToBackDoesNotConflict", func(t *testing.T) {
		// [10:00, 11:00) is taken; [11:00, 12:00) shares only the boundary.
		b := newTestBooking("room-1", at(11, 0), at(12, 0))
		require.NoError(t, db.CreateBookingWithLock(ctx, b))

		before := newTestBooking("room-1", at(9, 0), at(10, 0))
		require.NoError(t, db.CreateBookingWithLock(ctx, before))
	})

	t.Run("OverlapConflicts", func(t *testing.T) {
		cases := []struct {
			name       string
			start, end time.Time
		}{
			{"StraddlesBoundary", at(10, 30), at(11, 30)},
			{"ContainedWithin", at(10, 15), at(10, 45)},
			{"Contains", at(9, 30), at(12, 30)},
			{"ExactDuplicate", at(10, 0), at(11, 0)},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := db.CreateBookingWithLock(ctx, newTestBooking("room-1", tc.start, tc.end))
				assert.ErrorIs(t, err, ErrRoomBusy)
			})
		}
	})

	t.Run("OtherRoomUnaffected", func(t *testing.T) {
		b := newTestBooking("room-2", at(10, 0), at(11, 0))
		require.NoError(t, db.CreateBookingWithLock(ctx, b))
	})

	t.Run("CancelledDoesNotBlock", func(t *testing.T) {
		cancelled := newTestBooking("room-3", at(10, 0), at(11, 0))
		require.NoError(t, db.CreateBookingWithLock(ctx, cancelled))
		require.NoError(t, db.UpdateBookingStatus(ctx, cancelled.ID, models.StatusCancelled))

		b := newTestBooking("room-3", at(10, 0), at(11, 0))
		require.NoError(t, db.CreateBookingWithLock(ctx, b))
	})
}

func TestHasConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Date(2026, 10, 2, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	require.NoError(t, db.CreateBookingWithLock(ctx, newTestBooking("room-1", start, end)))

	busy, err := db.HasConflict(ctx, "room-1", start.Add(30*time.Minute), end.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = db.HasConflict(ctx, "room-1", end, end.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, busy)

	busy, err = db.HasConflict(ctx, "room-9", start, end)
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBookingsByRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)
	inside := newTestBooking("room-1", day.Add(10*time.Hour), day.Add(11*time.Hour))
	outside := newTestBooking("room-1", day.Add(20*time.Hour), day.Add(21*time.Hour))
	require.NoError(t, db.CreateBookingWithLock(ctx, inside))
	require.NoError(t, db.CreateBookingWithLock(ctx, outside))

	got, err := db.GetBookingsByRange(ctx, day.Add(9*time.Hour), day.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inside.ID, got[0].ID)
}

func TestGetUserAndRoomBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC)
	first := newTestBooking("room-1", day.Add(10*time.Hour), day.Add(11*time.Hour))
	second := newTestBooking("room-1", day.Add(12*time.Hour), day.Add(13*time.Hour))
	require.NoError(t, db.CreateBookingWithLock(ctx, first))
	require.NoError(t, db.CreateBookingWithLock(ctx, second))

	byRoom, err := db.GetRoomBookings(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, byRoom, 2)
	assert.Equal(t, first.ID, byRoom[0].ID, "room bookings sorted by start ascending")

	byUser, err := db.GetUserBookings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, second.ID, byUser[0].ID, "user bookings sorted by start descending")
}

func TestUpdateBookingStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	b := newTestBooking("room-1", start, start.Add(time.Hour))
	require.NoError(t, db.CreateBookingWithLock(ctx, b))

	require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusConfirmed))
	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	assert.ErrorIs(t, db.UpdateBookingStatus(ctx, "no-such-id", models.StatusCancelled), ErrNotFound)
}
