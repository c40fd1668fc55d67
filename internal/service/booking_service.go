package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parilka/internal/database"
	"parilka/internal/domain"
	"parilka/internal/events"
	"parilka/internal/metrics"
	"parilka/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService контроль допуска бронирований.
//
// Порядок проверок фиксированный: сначала дешевые локальные (границы
// интервала, комната, пересечения), затем единственный сетевой вызов к
// сервису абонементов, затем политика типов и вставка. Каждая проверка
// терминальна — запрос, который все равно упадет, не тратит сетевой
// round-trip.
type BookingService struct {
	bookings    domain.BookingStore
	rooms       domain.RoomStore
	memberships domain.MembershipClient
	cache       domain.MembershipCache
	eventBus    domain.EventPublisher
	policy      models.TierPolicy
	maxDuration time.Duration
	logger      *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingStore,
	rooms domain.RoomStore,
	memberships domain.MembershipClient,
	cache domain.MembershipCache,
	eventBus domain.EventPublisher,
	policy models.TierPolicy,
	maxDuration time.Duration,
	logger *zerolog.Logger,
) *BookingService {
	if maxDuration <= 0 {
		maxDuration = time.Duration(models.DefaultMaxBookingDurationMinutes) * time.Minute
	}
	if policy == nil {
		policy = models.DefaultTierPolicy()
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		memberships: memberships,
		cache:       cache,
		eventBus:    eventBus,
		policy:      policy,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

type AdmitInput struct {
	UserID    string
	RoomID    string
	StartTime time.Time
	EndTime   time.Time
}

// AdmitBooking решает, может ли бронирование быть создано, и создает его
// в статусе pending с id проверенного абонемента.
func (s *BookingService) AdmitBooking(ctx context.Context, input AdmitInput) (*models.Booking, error) {
	// 1-3: границы интервала.
	if !input.EndTime.After(input.StartTime) {
		metrics.IncBooking("invalid_interval")
		return nil, ErrInvalidInterval
	}
	if input.StartTime.Before(time.Now()) {
		metrics.IncBooking("start_in_past")
		return nil, ErrStartInPast
	}
	if input.EndTime.Sub(input.StartTime) > s.maxDuration {
		metrics.IncBooking("duration_exceeded")
		return nil, ErrDurationExceeded
	}

	// 4: комната существует и активна.
	room, err := s.rooms.GetActiveRoom(ctx, input.RoomID)
	if errors.Is(err, database.ErrNotFound) {
		metrics.IncBooking("room_not_found")
		return nil, ErrRoomNotFound
	}
	if err != nil {
		metrics.IncBooking("error")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// 5: предварительная проверка пересечений. Авторитетная проверка
	// повторяется внутри транзакции вставки, здесь отсекаем очевидный
	// конфликт до сетевого вызова.
	busy, err := s.bookings.HasConflict(ctx, room.ID, input.StartTime, input.EndTime)
	if err != nil {
		metrics.IncBooking("error")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if busy {
		metrics.IncBooking("conflict")
		return nil, database.ErrRoomBusy
	}

	// 6: активный абонемент, единственный сетевой вызов.
	membership, err := s.fetchMembership(ctx, input.UserID)
	if errors.Is(err, domain.ErrMembershipNotFound) {
		metrics.IncBooking("no_membership")
		return nil, ErrNoActiveMembership
	}
	if err != nil {
		metrics.IncBooking("membership_error")
		return nil, fmt.Errorf("%w: %v", ErrMembershipCheck, err)
	}

	// 7: политика типов абонементов.
	if s.policy.Blocked(membership.Type, room.Name) {
		metrics.IncBooking("tier_blocked")
		return nil, fmt.Errorf("%w: %s members cannot reserve %s", ErrRoomBlockedForTier, membership.Type, room.Name)
	}

	// 8: вставка с проверкой пересечений в одной транзакции.
	booking := &models.Booking{
		ID:           uuid.NewString(),
		UserID:       input.UserID,
		RoomID:       room.ID,
		MembershipID: membership.ID,
		StartTime:    input.StartTime.UTC(),
		EndTime:      input.EndTime.UTC(),
		Status:       models.StatusPending,
	}
	if err := s.bookings.CreateBookingWithLock(ctx, booking); err != nil {
		if errors.Is(err, database.ErrRoomBusy) {
			metrics.IncBooking("conflict")
			return nil, err
		}
		metrics.IncBooking("error")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.publishBookingEvent(booking, room.Name)
	metrics.IncBooking("success")
	return booking, nil
}

// fetchMembership читает абонемент через короткоживущий кэш.
// Недоступность кэша — просто промах; отрицательные ответы не кэшируются.
func (s *BookingService) fetchMembership(ctx context.Context, userID string) (*models.Membership, error) {
	if s.cache != nil {
		cached, err := s.cache.GetMembership(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("membership cache read failed")
		} else if cached != nil && cached.IsActive && !cached.Expired(time.Now()) {
			return cached, nil
		}
	}

	membership, err := s.memberships.GetActiveMembership(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetMembership(ctx, userID, membership); err != nil {
			s.logger.Warn().Err(err).Msg("membership cache write failed")
		}
	}
	return membership, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.bookings.GetBooking(ctx, id)
}

func (s *BookingService) GetActiveRooms(ctx context.Context) ([]*models.Room, error) {
	return s.rooms.GetActiveRooms(ctx)
}

func (s *BookingService) GetBookingsByRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.bookings.GetBookingsByRange(ctx, start, end)
}

func (s *BookingService) publishBookingEvent(booking *models.Booking, roomName string) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		RoomID:       booking.RoomID,
		RoomName:     roomName,
		MembershipID: booking.MembershipID,
		StartTime:    booking.StartTime,
		EndTime:      booking.EndTime,
		Status:       booking.Status,
	}
	if err := s.eventBus.PublishJSON(events.EventBookingCreated, payload); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
