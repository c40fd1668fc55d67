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

// AuthService сага регистрации и проверка входа.
//
// Регистрация — линейная сага: проверка уникальности, локальный аккаунт,
// профиль во внешнем сервисе, выпуск токена. Сбой после создания аккаунта
// компенсируется его удалением; сбой самой компенсации — отдельная ошибка
// целостности, она перекрывает исходную.
type AuthService struct {
	accounts    domain.AccountStore
	profiles    domain.ProfileClient
	hasher      domain.PasswordHasher
	tokens      domain.TokenIssuer
	eventBus    domain.EventPublisher
	limiter     domain.MembershipCache
	tokenTTL    time.Duration
	loginLimit  int
	loginWindow time.Duration
	logger      *zerolog.Logger
}

type AuthServiceOptions struct {
	TokenTTL    time.Duration
	LoginLimit  int
	LoginWindow time.Duration
}

func NewAuthService(
	accounts domain.AccountStore,
	profiles domain.ProfileClient,
	hasher domain.PasswordHasher,
	tokens domain.TokenIssuer,
	eventBus domain.EventPublisher,
	limiter domain.MembershipCache,
	opts AuthServiceOptions,
	logger *zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Duration(models.DefaultTokenTTLSeconds) * time.Second
	}
	return &AuthService{
		accounts:    accounts,
		profiles:    profiles,
		hasher:      hasher,
		tokens:      tokens,
		eventBus:    eventBus,
		limiter:     limiter,
		tokenTTL:    opts.TokenTTL,
		loginLimit:  opts.LoginLimit,
		loginWindow: opts.LoginWindow,
		logger:      logger,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AccountSummary публичная проекция аккаунта.
type AccountSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResult struct {
	AccessToken string         `json:"accessToken"`
	Account     AccountSummary `json:"user"`
}

// Register проводит сагу регистрации от начала до конца.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	// Шаг 1: уникальность email. Аккаунт еще не создан, компенсация
	// не нужна.
	_, err := s.accounts.GetAccountByEmail(ctx, input.Email)
	if err == nil {
		metrics.IncRegistration("duplicate")
		return nil, ErrDuplicateAccount
	}
	if !errors.Is(err, database.ErrNotFound) {
		metrics.IncRegistration("error")
		return nil, fmt.Errorf("%w: %v", ErrAccountLookup, err)
	}

	// Шаг 2: хэш пароля и локальный аккаунт в состоянии provisioning.
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		metrics.IncRegistration("error")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.RoleClient,
		IsActive:     true,
		State:        models.AccountStateProvisioning,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			metrics.IncRegistration("duplicate")
			return nil, ErrDuplicateAccount
		}
		metrics.IncRegistration("error")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Шаг 3: профиль во внешнем client-service.
	profile := &models.ProfileRequest{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("profile provisioning failed")
		return nil, s.compensate(ctx, account.ID, fmt.Errorf("%w: %v", ErrProfileProvisioning, err))
	}

	// Шаг 4: выпуск токена.
	token, err := s.issueToken(account)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("token issuance failed")
		return nil, s.compensate(ctx, account.ID, fmt.Errorf("%w: %v", ErrTokenIssuance, err))
	}

	// Шаг 5: сага завершена, аккаунт полон.
	if err := s.accounts.SetAccountState(ctx, account.ID, models.AccountStateComplete); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to finalize account state")
		return nil, s.compensate(ctx, account.ID, fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	s.publishAccountEvent(events.EventAccountRegistered, account, "")
	metrics.IncRegistration("success")

	return &AuthResult{
		AccessToken: token,
		Account: AccountSummary{
			ID:    account.ID,
			Email: account.Email,
			Role:  account.Role,
		},
	}, nil
}

// compensate удаляет аккаунт, созданный сагой. Возвращает cause, если
// компенсация прошла, и ErrCompensationFailed — если нет: осиротевший
// аккаунт важнее исходной ошибки.
func (s *AuthService) compensate(ctx context.Context, accountID string, cause error) error {
	if err := s.accounts.DeleteAccount(ctx, accountID); err != nil {
		metrics.IncCompensationFailure()
		metrics.IncRegistration("compensation_failed")
		s.logger.Error().Err(err).
			Str("account_id", accountID).
			AnErr("cause", cause).
			Msg("compensation failed: orphaned account requires manual remediation")
		return fmt.Errorf("%w: account %s: %v", ErrCompensationFailed, accountID, err)
	}

	metrics.IncRegistration("compensated")
	s.logger.Warn().
		Str("account_id", accountID).
		AnErr("cause", cause).
		Msg("registration compensated, local account removed")
	s.publishAccountEvent(events.EventAccountCompensated, &models.Account{ID: accountID}, cause.Error())
	return cause
}

type SignInResult struct {
	AccessToken string `json:"accessToken"`
}

// SignIn проверяет учетные данные и выпускает токен. Неактивность
// аккаунта проверяется до сравнения пароля, чтобы ответ для неактивного
// аккаунта не выдавал корректность пароля.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if !s.allowSignInAttempt(ctx, email) {
		metrics.IncLogin("throttled")
		return nil, ErrTooManyAttempts
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		// Не раскрываем, существует ли аккаунт.
		metrics.IncLogin("invalid")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.IncLogin("error")
		return nil, fmt.Errorf("%w: %v", ErrAccountLookup, err)
	}

	if !account.IsActive {
		metrics.IncLogin("inactive")
		return nil, ErrAccountInactive
	}

	if !s.hasher.Compare(password, account.PasswordHash) {
		metrics.IncLogin("invalid")
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		metrics.IncLogin("error")
		return nil, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}

	metrics.IncLogin("success")
	return &SignInResult{AccessToken: token}, nil
}

func (s *AuthService) issueToken(account *models.Account) (string, error) {
	token, err := s.tokens.Issue(account.ID, map[string]any{
		"email": account.Email,
		"role":  account.Role,
	}, s.tokenTTL)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("token issuer returned empty token")
	}
	return token, nil
}

// allowSignInAttempt ограничивает частоту попыток входа по email.
// Недоступность лимитера не блокирует вход.
func (s *AuthService) allowSignInAttempt(ctx context.Context, email string) bool {
	if s.limiter == nil || s.loginLimit <= 0 {
		return true
	}
	ok, err := s.limiter.CheckRateLimit(ctx, "login:"+email, s.loginLimit, s.loginWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login rate limiter unavailable, allowing attempt")
		return true
	}
	return ok
}

func (s *AuthService) publishAccountEvent(eventType string, account *models.Account, reason string) {
	if s.eventBus == nil {
		return
	}
	payload := events.AccountEventPayload{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Reason:    reason,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("account_id", account.ID).Msg("publish event error")
	}
}
