package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig configures the standalone HTTP server.
type ServerConfig struct {
	Addr           string        `env:"COLONOS_ADDR"            envDefault:":8080"`
	DBPath         string        `env:"COLONOS_DB_PATH"         envDefault:"colonos.db"`
	JWTSecret      string        `env:"COLONOS_JWT_SECRET,required"`
	JWTIssuer      string        `env:"COLONOS_JWT_ISSUER"      envDefault:"colonos"`
	TokenTTL       time.Duration `env:"COLONOS_TOKEN_TTL"       envDefault:"24h"`
	GameConfig     string        `env:"COLONOS_GAME_CONFIG"     envDefault:"data/game_config.json"`
	Boards         string        `env:"COLONOS_BOARDS"          envDefault:"data/boards.yaml"`
	BotIdentities  string        `env:"COLONOS_BOT_IDENTITIES"  envDefault:"data/bot_identities.json"`
	LogLevel       string        `env:"COLONOS_LOG_LEVEL"       envDefault:"info"`
	AllowedOrigins []string      `env:"COLONOS_ALLOWED_ORIGINS" envSeparator:","`
}

// ModuleConfig configures the Nakama runtime module from the server's runtime env.
type ModuleConfig struct {
	DBPath        string `env:"colonos_db_path"        envDefault:"data/colonos.db"`
	GameConfig    string `env:"colonos_game_config"    envDefault:"data/game_config.json"`
	Boards        string `env:"colonos_boards"         envDefault:"data/boards.yaml"`
	BotIdentities string `env:"colonos_bot_identities" envDefault:"data/bot_identities.json"`
	// BotsEnabled overrides bots_enabled of the game config when set.
	BotsEnabled *bool `env:"colonos_bots_enabled"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvMap loads configuration from vars instead of the process environment.
func ParseEnvMap(target any, vars map[string]string) error {
	if vars == nil {
		vars = map[string]string{}
	}
	if err := env.ParseWithOptions(target, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadModuleConfig parses ModuleConfig from a Nakama runtime env map.
func LoadModuleConfig(vars map[string]string) (ModuleConfig, error) {
	var c ModuleConfig
	if err := ParseEnvMap(&c, vars); err != nil {
		return ModuleConfig{}, err
	}
	return c, nil
}

// LoadServerConfig parses ServerConfig from the environment.
func LoadServerConfig() (ServerConfig, error) {
	var c ServerConfig
	if err := ParseEnv(&c); err != nil {
		return ServerConfig{}, err
	}
	return c, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
