package repository

import (
	"context"
	"sync/atomic"
	"time"

	"parilka/internal/domain"
	"parilka/internal/models"

	"github.com/rs/zerolog"
)

// FailoverMembershipCache переключается на запасной кэш при сбоях
// первичного и пробует вернуться через минуту.
type FailoverMembershipCache struct {
	primary   domain.MembershipCache
	fallback  domain.MembershipCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nano
}

func NewFailoverMembershipCache(primary, fallback domain.MembershipCache, logger *zerolog.Logger) *FailoverMembershipCache {
	return &FailoverMembershipCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

const recoveryInterval = time.Minute

func (r *FailoverMembershipCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary membership cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverMembershipCache) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverMembershipCache) GetMembership(ctx context.Context, userID string) (*models.Membership, error) {
	if !r.isDown.Load() {
		m, err := r.primary.GetMembership(ctx, userID)
		if err == nil {
			return m, nil
		}
		r.markDown(err)
	} else if r.shouldRetryPrimary() {
		m, err := r.primary.GetMembership(ctx, userID)
		if err == nil {
			r.isDown.Store(false)
			return m, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetMembership(ctx, userID)
}

func (r *FailoverMembershipCache) SetMembership(ctx context.Context, userID string, m *models.Membership) error {
	if !r.isDown.Load() {
		err := r.primary.SetMembership(ctx, userID, m)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetMembership(ctx, userID, m)
}

func (r *FailoverMembershipCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		ok, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
