package worker

import (
	"context"
	"math"
	"time"
)

// RetryPolicy параметры экспоненциального backoff.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy политика для исходящих HTTP-вызовов: до maxRetries
// повторов, задержка от 100мс до 2с.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:    maxRetries,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2,
	}
}

// NextDelay возвращает задержку для попытки attempt (нумерация с 1).
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// Do выполняет fn с повторами по политике. Повтор происходит, только если
// fn вернула ошибку и retryable(err) == true. Отмена контекста прерывает
// ожидание между попытками.
func Do(ctx context.Context, policy RetryPolicy, fn func() error, retryable func(error) bool) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= policy.MaxRetries || retryable == nil || !retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(policy.NextDelay(attempt + 1)):
		}
	}
}
