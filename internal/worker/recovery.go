package worker

import (
	"context"
	"time"

	"parilka/internal/domain"
	"parilka/internal/metrics"

	"github.com/rs/zerolog"
)

// RecoveryWorker периодически компенсирует аккаунты, застрявшие в состоянии
// provisioning: падение процесса между созданием аккаунта и компенсацией
// оставляет осиротевшую запись, которую некому удалить синхронно.
type RecoveryWorker struct {
	accounts domain.AccountStore
	interval time.Duration
	minAge   time.Duration
	logger   *zerolog.Logger
}

func NewRecoveryWorker(accounts domain.AccountStore, interval, minAge time.Duration, logger *zerolog.Logger) *RecoveryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if minAge <= 0 {
		minAge = 5 * time.Minute
	}
	return &RecoveryWorker{
		accounts: accounts,
		interval: interval,
		minAge:   minAge,
		logger:   logger,
	}
}

// Run блокируется до отмены контекста.
func (w *RecoveryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().
		Dur("interval", w.interval).
		Dur("min_age", w.minAge).
		Msg("recovery worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("recovery worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep один проход: находит и удаляет осиротевшие аккаунты.
// Аккаунты моложе minAge не трогаем — их сага еще может идти.
func (w *RecoveryWorker) Sweep(ctx context.Context) {
	metrics.IncRecoverySweep()

	stuck, err := w.accounts.GetStuckAccounts(ctx, w.minAge)
	if err != nil {
		w.logger.Error().Err(err).Msg("recovery sweep: list stuck accounts")
		return
	}
	if len(stuck) == 0 {
		return
	}

	for _, account := range stuck {
		if err := w.accounts.DeleteAccount(ctx, account.ID); err != nil {
			w.logger.Error().Err(err).
				Str("account_id", account.ID).
				Msg("recovery sweep: delete orphaned account")
			continue
		}
		metrics.IncRecoveredAccount()
		w.logger.Warn().
			Str("account_id", account.ID).
			Str("email", account.Email).
			Time("created_at", account.CreatedAt).
			Msg("recovery sweep: orphaned account removed")
	}
}
