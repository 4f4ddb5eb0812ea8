package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	BotToken    string
	APIBaseURL  string
	DatabaseURL string
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	// Период фонового обновления списка курсов в открытых карточках.
	CourseRefresh time.Duration
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	refresh, err := parseDuration(getenv("COURSE_REFRESH_INTERVAL", "45s"))
	if err != nil {
		return nil, fmt.Errorf("COURSE_REFRESH_INTERVAL: %w", err)
	}

	cfg := &Config{
		BotToken:      mustEnv("BOT_TOKEN"),
		APIBaseURL:    mustEnv("API_BASE_URL"),
		DatabaseURL:   mustEnv("DATABASE_URL"),
		Location:      loc,
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		CourseRefresh: refresh,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
