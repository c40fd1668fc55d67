package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"parilka/internal/config"
	"parilka/internal/metrics"
	"parilka/internal/models"
	"parilka/internal/worker"

	"github.com/rs/zerolog"
)

// ProfileClient создает профили клиентов в client-service.
type ProfileClient struct {
	baseURL string
	client  *http.Client
	retry   worker.RetryPolicy
	logger  *zerolog.Logger
}

func NewProfileClient(cfg config.ProfileConfig, logger *zerolog.Logger) *ProfileClient {
	return &ProfileClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		retry:  worker.DefaultRetryPolicy(cfg.MaxRetries),
		logger: logger,
	}
}

// CreateProfile выполняет POST /clients. Любой не-2xx ответ — ошибка.
// Транспортные сбои и 5xx повторяются по политике backoff.
func (c *ProfileClient) CreateProfile(ctx context.Context, profile *models.ProfileRequest) error {
	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	url := c.baseURL + "/clients"
	return worker.Do(ctx, c.retry, func() error {
		start := time.Now()
		err := c.post(ctx, url, body)
		metrics.ObserveOutbound("profile", time.Since(start).Seconds())
		return err
	}, isTransient)
}

func (c *ProfileClient) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &transientError{fmt.Errorf("profile request failed: %w", err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	c.logger.Error().Int("status", resp.StatusCode).Str("url", url).Msg("profile provisioning rejected")
	err = fmt.Errorf("profile service returned status %d", resp.StatusCode)
	if resp.StatusCode >= 500 {
		return &transientError{err}
	}
	return err
}
