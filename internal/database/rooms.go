package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parilka/internal/models"

	"github.com/google/uuid"
)

// SeedRooms наполняет справочник комнат при пустой таблице.
// Повторный запуск с непустой таблицей ничего не меняет.
func (db *DB) SeedRooms(ctx context.Context, names []string) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count rooms: %w", err)
	}
	if count > 0 {
		db.logger.Debug().Int("rooms", count).Msg("rooms already seeded, skipping")
		return nil
	}

	for _, name := range names {
		_, err := db.ExecContext(ctx,
			`INSERT INTO rooms (id, name, is_active) VALUES (?, ?, 1)`,
			uuid.NewString(), name,
		)
		if err != nil {
			return fmt.Errorf("failed to seed room %s: %w", name, err)
		}
	}
	db.logger.Info().Int("rooms", len(names)).Msg("rooms seeded")
	return nil
}

// GetActiveRoom возвращает активную комнату по id.
// Неактивная комната неотличима от отсутствующей.
func (db *DB) GetActiveRoom(ctx context.Context, id string) (*models.Room, error) {
	query := `SELECT id, name, is_active FROM rooms WHERE id = ? AND is_active = 1`

	var room models.Room
	err := db.QueryRowContext(ctx, query, id).Scan(&room.ID, &room.Name, &room.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

func (db *DB) GetRoomByName(ctx context.Context, name string) (*models.Room, error) {
	query := `SELECT id, name, is_active FROM rooms WHERE name = ?`

	var room models.Room
	err := db.QueryRowContext(ctx, query, name).Scan(&room.ID, &room.Name, &room.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room by name: %w", err)
	}
	return &room, nil
}

func (db *DB) GetActiveRooms(ctx context.Context) ([]*models.Room, error) {
	query := `SELECT id, name, is_active FROM rooms WHERE is_active = 1 ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		r := &models.Room{}
		if err := rows.Scan(&r.ID, &r.Name, &r.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (db *DB) DeactivateRoom(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `UPDATE rooms SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate room: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
