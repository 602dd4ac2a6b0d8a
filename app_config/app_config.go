package app_config

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	FiberPort int `env:"FIBER_PORT, default=3000"`

	LogLevel string `env:"LOG_LEVEL, default=info"`

	SupabaseUrl            string `env:"SUPABASE_URL, default=http://127.0.0.1:54321"`
	SupabaseAnonKey        string `env:"SUPABASE_ANON_KEY"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`

	// When set, profile routes require a valid bearer token signed with
	// this secret. Empty leaves the routes open.
	SupabaseJwtSecret string `env:"SUPABASE_JWT_SECRET"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=10s"`

	XpUpdateMaxAttempts int `env:"XP_UPDATE_MAX_ATTEMPTS, default=5"`

	LeaderboardLimit int `env:"LEADERBOARD_LIMIT, default=10"`
}

func NewAppConfig() *AppConfig {
	ac := &AppConfig{}
	if err := envconfig.Process(context.Background(), ac); err != nil {
		slog.With("err", err).Error(
			"Failed to load environment variables",
		)
		os.Exit(1)
	}
	return ac
}
