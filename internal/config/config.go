// Package config resolves the command-line and environment settings the
// console starts with. Flags win over environment variables, environment
// variables win over the built-in defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const defaultPageSize = 20

// Config is the resolved startup configuration.
type Config struct {
	UserID    string
	PageSize  int
	AltScreen bool
	DebugLog  string
}

// ParseFlags reads the process flags and MATTERM_* environment variables.
func ParseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.UserID, "user", envOr("MATTERM_USER", "@demo:loopback.local"), "Fully qualified user id (@user:server)")
	flag.IntVar(&cfg.PageSize, "page-size", envOrInt("MATTERM_PAGE_SIZE", defaultPageSize), "Messages fetched on entering a room")
	flag.BoolVar(&cfg.AltScreen, "alt-screen", envOrBool("MATTERM_ALT_SCREEN", true), "Use alternate screen buffer")
	flag.StringVar(&cfg.DebugLog, "debug-log", envOr("MATTERM_DEBUG_LOG", ""), "Optional debug log file path")
	flag.Parse()
	return cfg.normalized()
}

func (c Config) normalized() Config {
	c.UserID = strings.TrimSpace(c.UserID)
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	return c
}

// Validate reports settings a session cannot start with.
func (c Config) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
