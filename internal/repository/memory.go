package repository

import (
	"context"
	"sync"
	"time"

	"parilka/internal/models"
)

// MemoryMembershipCache кэш в памяти процесса. Используется как запасной
// вариант при недоступном Redis и в тестах.
type MemoryMembershipCache struct {
	mu          sync.RWMutex
	memberships map[string]*memoryEntry
	rateLimits  map[string]*rateLimitEntry
	ttl         time.Duration
}

type memoryEntry struct {
	membership *models.Membership
	expiresAt  time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryMembershipCache(ttl time.Duration) *MemoryMembershipCache {
	return &MemoryMembershipCache{
		memberships: make(map[string]*memoryEntry),
		rateLimits:  make(map[string]*rateLimitEntry),
		ttl:         ttl,
	}
}

func (r *MemoryMembershipCache) GetMembership(ctx context.Context, userID string) (*models.Membership, error) {
	r.mu.RLock()
	entry, ok := r.memberships[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.memberships, userID)
		r.mu.Unlock()
		return nil, nil
	}
	return entry.membership, nil
}

func (r *MemoryMembershipCache) SetMembership(ctx context.Context, userID string, m *models.Membership) error {
	r.mu.Lock()
	r.memberships[userID] = &memoryEntry{
		membership: m,
		expiresAt:  time.Now().Add(r.ttl),
	}
	r.mu.Unlock()
	return nil
}

func (r *MemoryMembershipCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry.count++
	}

	r.rateLimits[key] = entry
	return entry.count <= limit, nil
}
