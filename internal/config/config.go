package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Default configuration values
const (
	DefaultPort     = "8080"
	DefaultOrigins  = "http://localhost:5173"
	DefaultLogLevel = "info"
)

// Config holds application configuration
type Config struct {
	// Addr is the listen address, built from the port.
	Addr string

	// AllowedOrigins are the frontend origins accepted at websocket
	// upgrade time. A single "*" entry allows everything.
	AllowedOrigins []string

	// LogLevel is the parsed logrus level.
	LogLevel logrus.Level
}

// Options for loading config with CLI flag overrides
type Options struct {
	Port     string
	Origins  string
	LogLevel string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables (a .env file is loaded if present)
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	// Pull a .env file into the environment if one exists.
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("No .env file loaded")
	}

	port := opts.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = DefaultPort
	}

	origins := opts.Origins
	if origins == "" {
		origins = os.Getenv("CORS_ALLOWED_ORIGINS")
	}
	if origins == "" {
		origins = DefaultOrigins
	}

	levelStr := opts.LogLevel
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}

	return &Config{
		Addr:           ":" + port,
		AllowedOrigins: splitOrigins(origins),
		LogLevel:       level,
	}, nil
}

// splitOrigins parses a comma-separated origin list, trimming whitespace
// and dropping empty entries.
func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
