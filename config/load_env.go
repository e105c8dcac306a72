package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spacesedan/writeclean/internal/analyzer"
	"github.com/spacesedan/writeclean/internal/server"
	"github.com/subosito/gotenv"
)

// LoadEnv loads config/envs/.env.<env> into the process environment.
// Variables already set in the environment win.
func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Debug("No .env file found, using OS environment",
			slog.String("file", envFile))
	}
}

// AppEnv returns APP_ENV, defaulting to dev.
func AppEnv() string {
	return getEnv("APP_ENV", "dev")
}

func GetAnalyzerConfig() analyzer.Config {
	def := analyzer.DefaultConfig()
	return analyzer.Config{
		LexiconDir:       getEnv("LEXICON_DIR", ""),
		EmotionThreshold: getFloat("EMOTION_THRESHOLD", def.EmotionThreshold),
		RecencyWeight:    getFloat("RECENCY_WEIGHT", def.RecencyWeight),
		VaderFallback:    getBool("VADER_FALLBACK", def.VaderFallback),
	}
}

func GetServerConfig() server.Config {
	def := server.DefaultConfig()
	return server.Config{
		Addr:           getEnv("HTTP_ADDR", def.Addr),
		AnalyzeTimeout: getDuration("ANALYZE_TIMEOUT", def.AnalyzeTimeout),
		CacheTTL:       getDuration("CACHE_TTL", def.CacheTTL),
	}
}

// CacheEnabled reports whether a Valkey address is configured.
func CacheEnabled() bool {
	return getEnv("VALKEY_INIT_ADDRESS", "") != ""
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		invalid(key, raw, err)
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		invalid(key, raw, err)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		invalid(key, raw, err)
		return defaultValue
	}
	return v
}

func invalid(key, raw string, err error) {
	slog.Warn("[Config] Ignoring invalid value",
		slog.String("key", key),
		slog.String("value", raw),
		slog.String("error", err.Error()))
}
