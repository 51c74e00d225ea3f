package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"pos_sales/internal/sales"
)

// Response shapes the query bridge can answer in.
var ValidResponseShapes = []string{"array", "data", "rows"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	// Operator API
	Port          string
	AdminPassword string
	Categories    []string
	FeedSize      int

	// Query service
	QueryEndpoint string
	QueryTimeout  time.Duration

	// Logging
	LogLevel string

	// Query bridge
	BridgePort          string
	BridgeDBPath        string
	BridgeResponseShape string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8081"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		Categories:    getEnvList("CATEGORIES", sales.DefaultCategories),
		FeedSize:      getEnvInt("NOTIFICATION_FEED_SIZE", 50),

		QueryEndpoint: getEnv("QUERY_ENDPOINT", "http://localhost:8090/api/query"),
		QueryTimeout:  getEnvDuration("QUERY_TIMEOUT", 10*time.Second),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		BridgePort:          getEnv("BRIDGE_PORT", "8090"),
		BridgeDBPath:        getEnv("BRIDGE_DB_PATH", "./data/pos.db"),
		BridgeResponseShape: strings.ToLower(getEnv("BRIDGE_RESPONSE_SHAPE", "rows")),
	}
}

// Validate validates the configuration and returns an error listing every problem found.
func (c *Config) Validate() error {
	var errors []string

	for name, port := range map[string]string{"port": c.Port, "bridge port": c.BridgePort} {
		if p, err := strconv.Atoi(port); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", name, port))
		} else if p < 1 || p > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, p))
		}
	}

	if c.QueryEndpoint == "" {
		errors = append(errors, "query endpoint cannot be empty")
	} else if u, err := url.Parse(c.QueryEndpoint); err != nil {
		errors = append(errors, fmt.Sprintf("invalid query endpoint '%s': %v", c.QueryEndpoint, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid query endpoint scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.QueryTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid query timeout %v: must be positive", c.QueryTimeout))
	} else if c.QueryTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid query timeout %v: must be at most 5 minutes", c.QueryTimeout))
	}

	if c.AdminPassword == "" {
		errors = append(errors, "admin password cannot be empty")
	}

	if len(c.Categories) == 0 {
		errors = append(errors, "at least one category is required")
	}

	if c.FeedSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid notification feed size %d: must be at least 1", c.FeedSize))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if c.BridgeDBPath == "" {
		errors = append(errors, "bridge database path cannot be empty")
	}

	if !slices.Contains(ValidResponseShapes, c.BridgeResponseShape) {
		errors = append(errors, fmt.Sprintf("invalid bridge response shape '%s': must be one of %v", c.BridgeResponseShape, ValidResponseShapes))
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return slices.Clone(defaultValue)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
