package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"parilka/internal/config"
	"parilka/internal/domain"
	"parilka/internal/metrics"
	"parilka/internal/models"
	"parilka/internal/worker"

	"github.com/rs/zerolog"
)

// MembershipClient читает активный абонемент пользователя из
// membership-service.
type MembershipClient struct {
	baseURL string
	client  *http.Client
	retry   worker.RetryPolicy
	logger  *zerolog.Logger
}

func NewMembershipClient(cfg config.MembershipConfig, logger *zerolog.Logger) *MembershipClient {
	return &MembershipClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		retry:  worker.DefaultRetryPolicy(cfg.MaxRetries),
		logger: logger,
	}
}

// GetActiveMembership выполняет GET /membership/user/{id}.
// 401 и 404 означают отсутствие абонемента (domain.ErrMembershipNotFound),
// прочие сбои — ошибку проверки. Истекший абонемент в ответе
// равнозначен отсутствующему.
func (c *MembershipClient) GetActiveMembership(ctx context.Context, userID string) (*models.Membership, error) {
	url := fmt.Sprintf("%s/membership/user/%s", c.baseURL, userID)

	var membership *models.Membership
	err := worker.Do(ctx, c.retry, func() error {
		start := time.Now()
		m, err := c.get(ctx, url)
		metrics.ObserveOutbound("membership", time.Since(start).Seconds())
		membership = m
		return err
	}, isTransient)
	if err != nil {
		return nil, err
	}

	if membership == nil || !membership.IsActive || membership.Expired(time.Now()) {
		return nil, domain.ErrMembershipNotFound
	}
	return membership, nil
}

func (c *MembershipClient) get(ctx context.Context, url string) (*models.Membership, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build membership request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &transientError{fmt.Errorf("membership request failed: %w", err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrMembershipNotFound
	case resp.StatusCode >= 500:
		return nil, &transientError{fmt.Errorf("membership service returned status %d", resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("membership service returned status %d", resp.StatusCode)
	}

	var membership models.Membership
	if err := json.NewDecoder(resp.Body).Decode(&membership); err != nil {
		return nil, fmt.Errorf("failed to decode membership response: %w", err)
	}
	if membership.ID == "" {
		return nil, domain.ErrMembershipNotFound
	}
	return &membership, nil
}

// transientError помечает сбой, который имеет смысл повторить.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
