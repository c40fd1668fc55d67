package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRooms(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	names := []string{"training_room_1", "default_sauna"}
	require.NoError(t, db.SeedRooms(ctx, names))

	rooms, err := db.GetActiveRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "default_sauna", rooms[0].Name, "rooms sorted by name")

	// A second seed with a different list is a no-op.
	require.NoError(t, db.SeedRooms(ctx, []string{"ice_room"}))
	rooms, err = db.GetActiveRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestGetActiveRoom(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedRooms(ctx, []string{"steam_sauna"}))
	seeded, err := db.GetRoomByName(ctx, "steam_sauna")
	require.NoError(t, err)

	got, err := db.GetActiveRoom(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "steam_sauna", got.Name)
	assert.True(t, got.IsActive)

	_, err = db.GetActiveRoom(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateRoom(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedRooms(ctx, []string{"ice_room"}))
	seeded, err := db.GetRoomByName(ctx, "ice_room")
	require.NoError(t, err)

	require.NoError(t, db.DeactivateRoom(ctx, seeded.ID))

	// A deactivated room is indistinguishable from a missing one.
	_, err = db.GetActiveRoom(ctx, seeded.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	byName, err := db.GetRoomByName(ctx, "ice_room")
	require.NoError(t, err)
	assert.False(t, byName.IsActive)

	assert.ErrorIs(t, db.DeactivateRoom(ctx, "no-such-id"), ErrNotFound)
}
