package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	FeedURLs         map[string]string // platform -> url
	SinkURL          string
	SinkSecret       string
	Port             string
	RulesDBPath      string
	SyncSchedule     string
	SyncTimeout      time.Duration
	RetryMaxAttempts int
	HTTPTimeout      time.Duration
	LogLevel         slog.Level
}

const (
	PlatformMeta   = "meta"
	PlatformGoogle = "google"
	PlatformTikTok = "tiktok"
)

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	syncTO := 30 * time.Minute
	if v := os.Getenv("SYNC_TIMEOUT_MINUTES"); v != "" {
		if d, err := time.ParseDuration(v + "m"); err == nil {
			syncTO = d
		}
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		lvl = slog.LevelInfo
	}
	feeds := map[string]string{}
	for platform, key := range map[string]string{
		PlatformMeta:   "META_FEED_URL",
		PlatformGoogle: "GOOGLE_FEED_URL",
		PlatformTikTok: "TIKTOK_FEED_URL",
	} {
		if v := os.Getenv(key); v != "" {
			feeds[platform] = v
		}
	}
	return Config{
		FeedURLs:         feeds,
		SinkURL:          os.Getenv("SINK_URL"),
		SinkSecret:       os.Getenv("SINK_SECRET"),
		Port:             envOr("PORT", "8080"),
		RulesDBPath:      os.Getenv("RULES_DB_PATH"),
		SyncSchedule:     os.Getenv("SYNC_SCHEDULE"),
		SyncTimeout:      syncTO,
		RetryMaxAttempts: atoiOr("RETRY_MAX_ATTEMPTS", 3),
		HTTPTimeout:      to,
		LogLevel:         lvl,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
