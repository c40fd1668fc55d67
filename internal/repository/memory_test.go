package repository

import (
	"context"
	"testing"
	"time"

	"parilka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMembershipCache(t *testing.T) {
	ctx := context.Background()
	membership := &models.Membership{
		ID: "mem-1", ClientID: "user-1", Type: models.MembershipStandard, IsActive: true,
	}

	t.Run("SetAndGet", func(t *testing.T) {
		cache := NewMemoryMembershipCache(time.Minute)
		require.NoError(t, cache.SetMembership(ctx, "user-1", membership))

		got, err := cache.GetMembership(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, membership, got)
	})

	t.Run("MissIsNilNil", func(t *testing.T) {
		cache := NewMemoryMembershipCache(time.Minute)
		got, err := cache.GetMembership(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("EntryExpires", func(t *testing.T) {
		cache := NewMemoryMembershipCache(10 * time.Millisecond)
		require.NoError(t, cache.SetMembership(ctx, "user-1", membership))
		time.Sleep(20 * time.Millisecond)

		got, err := cache.GetMembership(ctx, "user-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		cache := NewMemoryMembershipCache(time.Minute)

		for i := 0; i < 2; i++ {
			allowed, err := cache.CheckRateLimit(ctx, "k", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := cache.CheckRateLimit(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("RateLimitWindowResets", func(t *testing.T) {
		cache := NewMemoryMembershipCache(time.Minute)

		allowed, err := cache.CheckRateLimit(ctx, "k", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = cache.CheckRateLimit(ctx, "k", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.False(t, allowed)

		time.Sleep(20 * time.Millisecond)
		allowed, err = cache.CheckRateLimit(ctx, "k", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
