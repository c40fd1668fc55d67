package domain

import (
	"context"
	"errors"
	"time"

	"parilka/internal/models"
)

// ErrMembershipNotFound у пользователя нет активного абонемента.
// Возвращается клиентом сервиса абонементов на 401/404 и на пустой ответ.
var ErrMembershipNotFound = errors.New("no active membership found")

type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	SetAccountState(ctx context.Context, id, state string) error
	DeactivateAccount(ctx context.Context, id string) error
	GetStuckAccounts(ctx context.Context, minAge time.Duration) ([]*models.Account, error)
}

type BookingStore interface {
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetRoomBookings(ctx context.Context, roomID string) ([]*models.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]*models.Booking, error)
	GetBookingsByRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	HasConflict(ctx context.Context, roomID string, start, end time.Time) (bool, error)
	UpdateBookingStatus(ctx context.Context, id, status string) error
}

type RoomStore interface {
	SeedRooms(ctx context.Context, names []string) error
	GetActiveRoom(ctx context.Context, id string) (*models.Room, error)
	GetRoomByName(ctx context.Context, name string) (*models.Room, error)
	GetActiveRooms(ctx context.Context) ([]*models.Room, error)
}

// ProfileClient создает профиль клиента во внешнем client-service.
type ProfileClient interface {
	CreateProfile(ctx context.Context, profile *models.ProfileRequest) error
}

// MembershipClient читает активный абонемент из внешнего membership-service.
// Отсутствие абонемента выражается ErrMembershipNotFound, любая другая
// ошибка — сбой проверки.
type MembershipClient interface {
	GetActiveMembership(ctx context.Context, userID string) (*models.Membership, error)
}

// PasswordHasher внешняя способность хэширования паролей.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

// TokenIssuer внешняя способность выпуска токенов доступа.
type TokenIssuer interface {
	Issue(subject string, claims map[string]any, ttl time.Duration) (string, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MembershipCache короткоживущий кэш ответов membership-service.
// Отрицательные результаты не кэшируются.
type MembershipCache interface {
	GetMembership(ctx context.Context, userID string) (*models.Membership, error)
	SetMembership(ctx context.Context, userID string, m *models.Membership) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
