package models

import "time"

// Account локальная учетная запись. Создается только сагой регистрации,
// удаляется только компенсацией.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	State        string    `json:"state"` // provisioning, complete
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Booking бронирование комнаты на интервал [StartTime, EndTime).
type Booking struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RoomID       string    `json:"room_id"`
	MembershipID string    `json:"membership_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"` // pending, confirmed, cancelled
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Room справочная запись комнаты. Ядро ее не изменяет.
type Room struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ProfileRequest полезная нагрузка для создания профиля в client-service.
type ProfileRequest struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// Membership абонемент клиента. Принадлежит внешнему сервису,
// читается по сети и никогда не изменяется локально.
type Membership struct {
	ID       string    `json:"id"`
	ClientID string    `json:"clientId"`
	Type     string    `json:"type"` // standard, platinum, diamond
	IsActive bool      `json:"isActive"`
	EndDate  time.Time `json:"endDate"`
}

// Expired сообщает, истек ли абонемент на момент now.
func (m *Membership) Expired(now time.Time) bool {
	return !m.EndDate.IsZero() && m.EndDate.Before(now)
}
