package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port          string `envconfig:"PORT" default:"3001"`
	Host          string `envconfig:"HOST" default:"0.0.0.0"`
	Env           string `envconfig:"ENV" default:"development"` // "development" or "production"
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"*"`
	PublicURL     string `envconfig:"PUBLIC_URL"`
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers          int           `envconfig:"MIN_PLAYERS" default:"3"`
	MaxPlayers          int           `envconfig:"MAX_PLAYERS" default:"10"`
	VoteDuration        time.Duration `envconfig:"VOTE_DURATION" default:"30s"`
	WinningScore        int           `envconfig:"WINNING_SCORE" default:"10"`
	ReconnectGrace      time.Duration `envconfig:"RECONNECT_GRACE" default:"2m"`
	CleanupInterval     time.Duration `envconfig:"CLEANUP_INTERVAL" default:"30s"`
	RoomCodeLength      int           `envconfig:"ROOM_CODE_LENGTH" default:"8"`
	DisconnectCacheSize int           `envconfig:"DISCONNECT_CACHE_SIZE" default:"4096"`
	WordPairsFile       string        `envconfig:"WORD_PAIRS_FILE"`
	MessagesPerSecond   float64       `envconfig:"MESSAGES_PER_SECOND" default:"5"`
	MessageBurst        int           `envconfig:"MESSAGE_BURST" default:"10"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT"` // "json" or "console", empty picks by ENV
}

// Load reads an optional .env file, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the game bounds and durations
func (c *Config) Validate() error {
	g := c.Game
	switch {
	case g.MinPlayers < 3:
		return fmt.Errorf("MIN_PLAYERS must be at least 3, got %d", g.MinPlayers)
	case g.MaxPlayers < g.MinPlayers:
		return fmt.Errorf("MAX_PLAYERS (%d) must not be below MIN_PLAYERS (%d)", g.MaxPlayers, g.MinPlayers)
	case g.VoteDuration <= 0:
		return fmt.Errorf("VOTE_DURATION must be positive, got %s", g.VoteDuration)
	case g.ReconnectGrace <= 0:
		return fmt.Errorf("RECONNECT_GRACE must be positive, got %s", g.ReconnectGrace)
	case g.CleanupInterval <= 0:
		return fmt.Errorf("CLEANUP_INTERVAL must be positive, got %s", g.CleanupInterval)
	case g.WinningScore <= 0:
		return fmt.Errorf("WINNING_SCORE must be positive, got %d", g.WinningScore)
	case g.RoomCodeLength < 4:
		return fmt.Errorf("ROOM_CODE_LENGTH must be at least 4, got %d", g.RoomCodeLength)
	case g.DisconnectCacheSize <= 0:
		return fmt.Errorf("DISCONNECT_CACHE_SIZE must be positive, got %d", g.DisconnectCacheSize)
	case g.MessagesPerSecond <= 0 || g.MessageBurst <= 0:
		return errors.New("MESSAGES_PER_SECOND and MESSAGE_BURST must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
