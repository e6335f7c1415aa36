package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	DatabasePath string
	LogFile      string
	LogConsole   bool

	LogoPath      string
	WatermarkPath string
	FontRegular   string
	FontBold      string

	ProgressThreshold int
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by user) > default.
func Load() Config {
	cfg := Config{}
	cfg.DatabasePath = getEnv("DATABASE_PATH", "ofertomat.db")
	cfg.LogFile = getEnv("LOG_FILE", "ofertomat.log")
	cfg.LogConsole = ParseBool("LOG_CONSOLE", true)
	cfg.LogoPath = getEnv("LOGO_PATH", "logo.png")
	cfg.WatermarkPath = getEnv("WATERMARK_PATH", "")
	cfg.FontRegular = getEnv("FONT_REGULAR", "")
	cfg.FontBold = getEnv("FONT_BOLD", "")
	cfg.ProgressThreshold = ParseInt("PROGRESS_THRESHOLD", 200)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

// ParseInt reads an env var as int with default.
func ParseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}
