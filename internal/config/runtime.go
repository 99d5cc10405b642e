package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Runtime struct {
	HTTPAddr         string
	CacheMaxItems    int
	ObsBuffer        int
	StrictValidation bool
	LogLevel         string
	LogFormat        string
}

// Load reads the runtime settings from the environment. A local .env file is
// applied first when present; real environment variables win.
func Load() Runtime {
	_ = godotenv.Load(".env")

	return Runtime{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		CacheMaxItems:    getenvInt("CLAIMS_CATALOG_CACHE_MAX_ITEMS", 1024, 1),
		ObsBuffer:        getenvInt("CLAIMS_OBS_BUFFER", 4096, 1),
		StrictValidation: getenvBool("CLAIMS_STRICT_VALIDATION", false),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "json"),
	}
}

// NewLogger builds the process logger. LOG_FORMAT=console gives a
// human-readable development encoder; anything else is JSON. An unknown
// LOG_LEVEL falls back to info.
func (r Runtime) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(r.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(r.LogFormat, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}

func getenvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
