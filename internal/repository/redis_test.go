package repository

import (
	"context"
	"testing"
	"time"

	"parilka/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisMembershipCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	cache := NewRedisMembershipCache(client, time.Minute)
	ctx := context.Background()

	membership := &models.Membership{
		ID:       "mem-1",
		ClientID: "user-1",
		Type:     models.MembershipPlatinum,
		IsActive: true,
		EndDate:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, cache.SetMembership(ctx, "user-1", membership))

		got, err := cache.GetMembership(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, membership.ID, got.ID)
		assert.Equal(t, membership.Type, got.Type)
		assert.True(t, got.EndDate.Equal(membership.EndDate))
	})

	t.Run("MissIsNilNil", func(t *testing.T) {
		got, err := cache.GetMembership(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("EntryExpires", func(t *testing.T) {
		require.NoError(t, cache.SetMembership(ctx, "user-2", membership))
		s.FastForward(2 * time.Minute)

		got, err := cache.GetMembership(ctx, "user-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := cache.CheckRateLimit(ctx, "login:a@b.c", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := cache.CheckRateLimit(ctx, "login:a@b.c", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		// Window expiry resets the counter.
		s.FastForward(2 * time.Minute)
		allowed, err = cache.CheckRateLimit(ctx, "login:a@b.c", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("RedisDown", func(t *testing.T) {
		s.Close()

		_, err := cache.GetMembership(ctx, "user-1")
		assert.Error(t, err)
		_, err = cache.CheckRateLimit(ctx, "login:a@b.c", 3, time.Minute)
		assert.Error(t, err)
	})
}
