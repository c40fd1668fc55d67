package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parilka/internal/models"
)

// CreateBookingWithLock проверяет пересечения и вставляет бронирование в
// одной транзакции. SQLite сериализует писателей, поэтому два конкурентных
// запроса на одну комнату не могут оба пройти проверку.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Проверка пересечений внутри транзакции. Интервалы полуоткрытые:
	// существующий [s, e) конфликтует, если s < newEnd и e > newStart.
	var conflicts int
	queryCount := `SELECT COUNT(*) FROM bookings
	               WHERE room_id = ? AND status IN (?, ?)
	               AND start_time < ? AND end_time > ?`
	err = tx.QueryRowContext(ctx, queryCount,
		booking.RoomID, models.StatusPending, models.StatusConfirmed,
		booking.EndTime.UnixMilli(), booking.StartTime.UnixMilli(),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check conflicts in tx: %w", err)
	}
	if conflicts > 0 {
		return ErrRoomBusy
	}

	// 2. Вставка бронирования
	queryInsert := `INSERT INTO bookings (
				id, user_id, room_id, membership_id, start_time, end_time,
				status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, queryInsert,
		booking.ID,
		booking.UserID,
		booking.RoomID,
		booking.MembershipID,
		booking.StartTime.UnixMilli(),
		booking.EndTime.UnixMilli(),
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return tx.Commit()
}

// HasConflict проверяет пересечение интервала [start, end) с активными
// бронированиями комнаты вне транзакции.
func (db *DB) HasConflict(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings
	          WHERE room_id = ? AND status IN (?, ?)
	          AND start_time < ? AND end_time > ?`
	err := db.QueryRowContext(ctx, query,
		roomID, models.StatusPending, models.StatusConfirmed,
		end.UnixMilli(), start.UnixMilli(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check conflict: %w", err)
	}
	return count > 0, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT id, user_id, room_id, membership_id, start_time, end_time,
	                 status, created_at, updated_at
	          FROM bookings WHERE id = ?`

	b := &models.Booking{}
	var startMs, endMs int64
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.MembershipID,
		&startMs, &endMs, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	b.StartTime = time.UnixMilli(startMs).UTC()
	b.EndTime = time.UnixMilli(endMs).UTC()
	return b, nil
}

func (db *DB) GetRoomBookings(ctx context.Context, roomID string) ([]*models.Booking, error) {
	query := `SELECT id, user_id, room_id, membership_id, start_time, end_time,
	                 status, created_at, updated_at
	          FROM bookings WHERE room_id = ? ORDER BY start_time ASC`
	return db.queryBookings(ctx, query, roomID)
}

func (db *DB) GetUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	query := `SELECT id, user_id, room_id, membership_id, start_time, end_time,
	                 status, created_at, updated_at
	          FROM bookings WHERE user_id = ? ORDER BY start_time DESC`
	return db.queryBookings(ctx, query, userID)
}

// GetBookingsByRange возвращает бронирования, пересекающие [start, end).
func (db *DB) GetBookingsByRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT id, user_id, room_id, membership_id, start_time, end_time,
	                 status, created_at, updated_at
	          FROM bookings WHERE start_time < ? AND end_time > ?
	          ORDER BY start_time ASC`
	return db.queryBookings(ctx, query, end.UnixMilli(), start.UnixMilli())
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		var startMs, endMs int64
		err := rows.Scan(
			&b.ID, &b.UserID, &b.RoomID, &b.MembershipID,
			&startMs, &endMs, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.StartTime = time.UnixMilli(startMs).UTC()
		b.EndTime = time.UnixMilli(endMs).UTC()
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
