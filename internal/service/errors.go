package service

import "errors"

// Ошибки клиента: терминальные, без компенсации, не повторяются.
var (
	ErrDuplicateAccount   = errors.New("account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts")

	ErrInvalidInterval    = errors.New("end time must be after start time")
	ErrStartInPast        = errors.New("booking start time cannot be in the past")
	ErrDurationExceeded   = errors.New("booking duration exceeds the maximum")
	ErrRoomNotFound       = errors.New("room not found or is not active")
	ErrNoActiveMembership = errors.New("user does not have an active membership")
	ErrRoomBlockedForTier = errors.New("membership tier is not allowed to reserve this room")
)

// Ошибки зависимостей: терминальные после компенсации, операцию можно
// повторить целиком.
var (
	ErrProfileProvisioning = errors.New("failed to create profile")
	ErrTokenIssuance       = errors.New("could not generate access token")
	ErrAccountLookup       = errors.New("could not fetch the account")
	ErrMembershipCheck     = errors.New("failed to verify user membership")
	ErrPersistence         = errors.New("storage operation failed")
)

// ErrCompensationFailed ошибка целостности: компенсация не удалась и в
// хранилище остался осиротевший аккаунт. Требует внимания оператора,
// перекрывает исходную ошибку шага.
var ErrCompensationFailed = errors.New("saga compensation failed, orphaned account left behind")
