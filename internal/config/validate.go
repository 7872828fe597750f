package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robalobadob/shiritori/internal/words"
)

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.Server.HandlerTimeout <= 0 {
		return fmt.Errorf("HANDLER_TIMEOUT must be > 0 (got %s)", c.Server.HandlerTimeout)
	}
	if c.Server.FinishedGameTTL < 0 {
		return fmt.Errorf("FINISHED_GAME_TTL must be >= 0 (got %s)", c.Server.FinishedGameTTL)
	}
	if c.Auth.JWTExpiresDays <= 0 {
		return fmt.Errorf("JWT_EXPIRES_DAYS must be > 0 (got %d)", c.Auth.JWTExpiresDays)
	}
	if c.Auth.CookieName == "" {
		return errors.New("COOKIE_NAME must not be empty")
	}
	if c.Production() && (c.Auth.JWTSecret == devSecret || len(c.Auth.JWTSecret) < 32) {
		return errors.New("JWT_SECRET must be set to at least 32 characters in production")
	}
	if _, err := words.ParseSource(c.Words.Default); err != nil {
		return fmt.Errorf("WORDS_DEFAULT: %w", err)
	}
	if _, err := words.ParseSource(c.Daily.Source); err != nil {
		return fmt.Errorf("DAILY_SOURCE: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}
