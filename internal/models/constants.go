package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	RoleClient  = "client"
	RoleManager = "manager"
)

// Состояния саги регистрации. Аккаунт в provisioning старше порога —
// осиротевший, его подбирает recovery sweep.
const (
	AccountStateProvisioning = "provisioning"
	AccountStateComplete     = "complete"
)

const (
	MembershipStandard = "standard"
	MembershipPlatinum = "platinum"
	MembershipDiamond  = "diamond"
)

const (
	RoomTrainingRoom1    = "training_room_1"
	RoomTrainingRoom2    = "training_room_2"
	RoomTrainingRoom3    = "training_room_3"
	RoomAromatherapyRoom = "aromatherapy_room"
	RoomDefaultSauna     = "default_sauna"
	RoomIceRoom          = "ice_room"
	RoomSteamSauna       = "steam_sauna"
)

const (
	// DefaultMaxBookingDuration максимальная длительность бронирования
	DefaultMaxBookingDurationMinutes = 120

	// DefaultTokenTTL время жизни access-токена в секундах
	DefaultTokenTTLSeconds = 3600

	// DefaultMembershipCacheTTL время жизни кэша абонементов в секундах
	DefaultMembershipCacheTTLSeconds = 60

	// DefaultRecoveryMinAge минимальный возраст застрявшего аккаунта
	// перед компенсацией, в секундах
	DefaultRecoveryMinAgeSeconds = 300

	// DefaultLoginRateLimit попыток входа в окне
	DefaultLoginRateLimit = 10

	// DefaultLoginRateWindow окно ограничения попыток входа в секундах
	DefaultLoginRateWindowSeconds = 60
)
