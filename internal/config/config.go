package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"parilka/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Profile    ProfileConfig    `yaml:"profile"`
	Membership MembershipConfig `yaml:"membership"`
	Booking    BookingConfig    `yaml:"booking"`
	Recovery   RecoveryConfig   `yaml:"recovery"`
	Rooms      []string         `yaml:"rooms"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	JWTIssuer       string `yaml:"jwt_issuer"`
	JWTAudience     string `yaml:"jwt_audience"`
	TokenTTL        int    `yaml:"token_ttl"` // секунды
	BcryptCost      int    `yaml:"bcrypt_cost"`
	LoginRateLimit  int    `yaml:"login_rate_limit"`
	LoginRateWindow int    `yaml:"login_rate_window"` // секунды
}

// ProfileConfig внешний сервис профилей клиентов (client-service).
type ProfileConfig struct {
	BaseURL    string `yaml:"base_url"`
	Timeout    int    `yaml:"timeout"` // секунды
	MaxRetries int    `yaml:"max_retries"`
}

// MembershipConfig внешний сервис абонементов.
type MembershipConfig struct {
	BaseURL    string `yaml:"base_url"`
	Timeout    int    `yaml:"timeout"` // секунды
	MaxRetries int    `yaml:"max_retries"`
	CacheTTL   int    `yaml:"cache_ttl"` // секунды
}

type BookingConfig struct {
	MaxDurationMinutes int                 `yaml:"max_duration_minutes"`
	BlockedRooms       map[string][]string `yaml:"blocked_rooms"`
}

type RecoveryConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval"`
	MinAgeSeconds   int  `yaml:"min_age"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен, переменные могут прийти из окружения
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "CHANGE_ME" {
		return errors.New("auth jwt secret is required")
	}
	if c.Profile.BaseURL == "" {
		return errors.New("profile base_url is required")
	}
	if c.Membership.BaseURL == "" {
		return errors.New("membership base_url is required")
	}
	return ValidateRooms(c.Rooms)
}

func ValidateRooms(rooms []string) error {
	seen := make(map[string]bool, len(rooms))
	for _, name := range rooms {
		if name == "" {
			return errors.New("room name cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate room name: %s", name)
		}
		seen[name] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = models.DefaultTokenTTLSeconds
	}
	if c.Auth.LoginRateLimit == 0 {
		c.Auth.LoginRateLimit = models.DefaultLoginRateLimit
	}
	if c.Auth.LoginRateWindow == 0 {
		c.Auth.LoginRateWindow = models.DefaultLoginRateWindowSeconds
	}

	if c.Profile.Timeout == 0 {
		c.Profile.Timeout = 5
	}
	if c.Membership.Timeout == 0 {
		c.Membership.Timeout = 5
	}
	if c.Membership.CacheTTL == 0 {
		c.Membership.CacheTTL = models.DefaultMembershipCacheTTLSeconds
	}

	if c.Booking.MaxDurationMinutes == 0 {
		c.Booking.MaxDurationMinutes = models.DefaultMaxBookingDurationMinutes
	}
	if len(c.Booking.BlockedRooms) == 0 {
		c.Booking.BlockedRooms = map[string][]string{
			models.MembershipStandard: {
				models.RoomAromatherapyRoom,
				models.RoomDefaultSauna,
				models.RoomIceRoom,
				models.RoomSteamSauna,
			},
			models.MembershipPlatinum: {
				models.RoomIceRoom,
				models.RoomAromatherapyRoom,
			},
		}
	}

	if len(c.Rooms) == 0 {
		c.Rooms = []string{
			models.RoomTrainingRoom1,
			models.RoomTrainingRoom2,
			models.RoomTrainingRoom3,
			models.RoomAromatherapyRoom,
			models.RoomDefaultSauna,
			models.RoomIceRoom,
			models.RoomSteamSauna,
		}
	}

	if c.Recovery.IntervalSeconds == 0 {
		c.Recovery.IntervalSeconds = 60
	}
	if c.Recovery.MinAgeSeconds == 0 {
		c.Recovery.MinAgeSeconds = models.DefaultRecoveryMinAgeSeconds
	}
}

// TokenTTLDuration длительность жизни токена.
func (c AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// MaxDuration максимальная длительность одного бронирования.
func (c BookingConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationMinutes) * time.Minute
}
