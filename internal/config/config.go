// Package config loads server settings from the environment.
//
// A .env file in the working directory is read first (existing variables
// win), then cleanenv fills Config from the environment and env-default tags.
package config

import (
	"time"

	"github.com/robalobadob/shiritori/internal/words"
)

// Config is the root application configuration.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Words  WordsConfig
	Daily  DailyConfig
	Log    LogConfig

	DBPath string `env:"DB_PATH" env-default:"./data/app.db"`
}

// ServerConfig holds HTTP server settings. FinishedGameTTL is how long a
// finished game stays in memory for lookups; zero keeps finished games.
type ServerConfig struct {
	Port            string        `env:"PORT"              env-default:"5175"`
	ClientOrigin    string        `env:"CLIENT_ORIGIN"     env-default:"http://localhost:5173"`
	HandlerTimeout  time.Duration `env:"HANDLER_TIMEOUT"   env-default:"10s"`
	FinishedGameTTL time.Duration `env:"FINISHED_GAME_TTL" env-default:"10m"`
	AppEnv          string        `env:"APP_ENV"           env-default:"development"`
}

// AuthConfig holds JWT and cookie settings.
type AuthConfig struct {
	JWTSecret      string `env:"JWT_SECRET"       env-default:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" env-default:"14"`
	CookieName     string `env:"COOKIE_NAME"      env-default:"shiritori_token"`
}

// WordsConfig selects dictionaries. Empty file paths use the embedded copies.
type WordsConfig struct {
	Default     string `env:"WORDS_DEFAULT"      env-default:"unidic"`
	UnidicFile  string `env:"WORDS_UNIDIC_FILE"`
	PokemonFile string `env:"WORDS_POKEMON_FILE"`
}

// DailyConfig holds daily challenge settings.
type DailyConfig struct {
	Salt   string `env:"DAILY_SALT"   env-default:"local_dev_salt"`
	Source string `env:"DAILY_SOURCE" env-default:"unidic"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Pretty bool   `env:"LOG_PRETTY" env-default:"false"`
}

const devSecret = "dev_secret_change_me"

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool { return c.Server.AppEnv == "production" }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Server.Port }

// TokenTTL is the lifetime of an issued JWT.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.JWTExpiresDays) * 24 * time.Hour
}

// WordFiles maps each source to its override file, if one is set.
func (c *Config) WordFiles() map[words.Source]string {
	return map[words.Source]string{
		words.SourceUnidic:  c.Words.UnidicFile,
		words.SourcePokemon: c.Words.PokemonFile,
	}
}

// DefaultSource is the dictionary used when a request names none.
// Validate guarantees it parses.
func (c *Config) DefaultSource() words.Source {
	src, _ := words.ParseSource(c.Words.Default)
	return src
}

// DailySource is the dictionary the daily challenge draws its seed from.
func (c *Config) DailySource() words.Source {
	src, _ := words.ParseSource(c.Daily.Source)
	return src
}
