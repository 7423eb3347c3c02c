package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")

// Config holds process-wide settings read once at startup
type Config struct {
	TelegramToken       string
	DatabasePath        string
	RedisURL            string
	ConversationTTL     time.Duration
	Location            *time.Location
	ReminderInterval    time.Duration
	RoleCheckInterval   time.Duration
	ReminderMaxAttempts int
}

// Load reads the given .env files (".env" when none are given) and then the
// process environment. A missing .env file is not an error. ErrMissingToken
// comes with an otherwise complete Config.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			slog.Debug("config: Env file not loaded", "file", file, "error", err)
		}
	}

	cfg := Config{
		TelegramToken:       strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		DatabasePath:        getEnv("DATABASE_PATH", "data.sqlite"),
		RedisURL:            getEnv("REDIS_URL", ""),
		ConversationTTL:     24 * time.Hour,
		Location:            time.Local,
		ReminderInterval:    60 * time.Second,
		RoleCheckInterval:   15 * time.Second,
		ReminderMaxAttempts: 5,
	}

	var invalid []string

	if name := getEnv("BOT_TIMEZONE", ""); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			invalid = append(invalid, "BOT_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CONVERSATION_TTL", &cfg.ConversationTTL},
		{"REMINDER_INTERVAL", &cfg.ReminderInterval},
		{"ROLE_CHECK_INTERVAL", &cfg.RoleCheckInterval},
	}
	for _, d := range durations {
		value := getEnv(d.key, "")
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			invalid = append(invalid, d.key)
			continue
		}
		*d.dst = parsed
	}

	if value := getEnv("REMINDER_MAX_ATTEMPTS", ""); value != "" {
		attempts, err := strconv.Atoi(value)
		if err != nil || attempts <= 0 {
			invalid = append(invalid, "REMINDER_MAX_ATTEMPTS")
		} else {
			cfg.ReminderMaxAttempts = attempts
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	// Administrative commands work without a token
	if cfg.TelegramToken == "" {
		return cfg, ErrMissingToken
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
