// Package config loads service settings from the environment and an
// optional config file.
package config

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the storefront service.
type Config struct {
	AppPort          string
	DatabaseDriver   string
	DatabaseDSN      string
	RabbitMQURL      string
	RabbitMQQueue    string
	LogLevel         string
	DeviceCookieName string
	CookieSecure     bool
	CartMaxRetries   int
	ConfirmationTTL  time.Duration
	CheckoutPath     string
	ExcludeSelf      bool
	SeedDefaults     bool
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:storefront?mode=memory&cache=shared")
	v.SetDefault("RABBITMQ_URL", "") // Empty disables cart event publishing
	v.SetDefault("RABBITMQ_QUEUE", "cart_events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEVICE_COOKIE_NAME", "deviceId")
	v.SetDefault("DEVICE_COOKIE_SECURE", false)
	v.SetDefault("CART_MAX_RETRIES", 3)
	v.SetDefault("CART_CONFIRMATION_TTL", "3000ms")
	v.SetDefault("CHECKOUT_PATH", "/checkout")
	v.SetDefault("CATALOG_RELATED_EXCLUDE_SELF", false)
	v.SetDefault("CATALOG_SEED_DEFAULTS", true)
	v.SetDefault("HTTP_READ_TIMEOUT", "10s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "10s")
}

// Load reads configuration from the environment and, when configFile is
// not empty, from that file. Environment variables win over the file.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %q", configFile)
		}
	}

	cfg := Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:    v.GetString("RABBITMQ_QUEUE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DeviceCookieName: v.GetString("DEVICE_COOKIE_NAME"),
		CookieSecure:     v.GetBool("DEVICE_COOKIE_SECURE"),
		CartMaxRetries:   v.GetInt("CART_MAX_RETRIES"),
		ConfirmationTTL:  v.GetDuration("CART_CONFIRMATION_TTL"),
		CheckoutPath:     v.GetString("CHECKOUT_PATH"),
		ExcludeSelf:      v.GetBool("CATALOG_RELATED_EXCLUDE_SELF"),
		SeedDefaults:     v.GetBool("CATALOG_SEED_DEFAULTS"),
		ReadTimeout:      v.GetDuration("HTTP_READ_TIMEOUT"),
		WriteTimeout:     v.GetDuration("HTTP_WRITE_TIMEOUT"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if c.DeviceCookieName == "" {
		return errors.New("DEVICE_COOKIE_NAME must not be empty")
	}
	if c.CartMaxRetries < 0 {
		return errors.Errorf("CART_MAX_RETRIES must be >= 0, got %d", c.CartMaxRetries)
	}
	if c.ConfirmationTTL <= 0 {
		return errors.Errorf("CART_CONFIRMATION_TTL must be positive, got %s", c.ConfirmationTTL)
	}
	return nil
}
