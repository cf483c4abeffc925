package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/flagx"
	"github.com/dmitrijs2005/moviesearch/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// Pointer fields distinguish "absent" from zero values, so a file only
// overrides the keys it names.
type JsonConfig struct {
	ListenAddr             *string         `json:"listen_addr"`
	DatabasePath           *string         `json:"database_path"`
	PoolSize               *int            `json:"pool_size"`
	BusyTimeout            *timex.Duration `json:"busy_timeout"`
	SecretKey              *string         `json:"secret_key"`
	TokenValidityDuration  *timex.Duration `json:"token_validity_duration"`
	FrontendURL            *string         `json:"frontend_url"`
	TMDBAPIKey             *string         `json:"tmdb_api_key"`
	TMDBBaseURL            *string         `json:"tmdb_base_url"`
	TMDBLanguage           *string         `json:"tmdb_language"`
	UpstreamTimeout        *timex.Duration `json:"upstream_timeout"`
	SearchCacheTTL         *timex.Duration `json:"search_cache_ttl"`
	RateLimitWindow        *timex.Duration `json:"rate_limit_window"`
	RateLimitRequests      *int            `json:"rate_limit_requests"`
	LoginRateLimitAttempts *int            `json:"login_rate_limit_attempts"`
	AuditQueueSize         *int            `json:"audit_queue_size"`
	AuditRetryDelay        *timex.Duration `json:"audit_retry_delay"`
	BlacklistSweepInterval *timex.Duration `json:"blacklist_sweep_interval"`
	SeedDefaultUsers       *bool           `json:"seed_default_users"`
	Environment            *string         `json:"environment"`
	LogLevel               *string         `json:"log_level"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func copyDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags. If
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	applyJson(config, c)
}

func applyJson(config *Config, c *JsonConfig) {
	set(&config.ListenAddr, c.ListenAddr)
	set(&config.DatabasePath, c.DatabasePath)
	set(&config.PoolSize, c.PoolSize)
	set(&config.SecretKey, c.SecretKey)
	set(&config.FrontendURL, c.FrontendURL)
	set(&config.TMDBAPIKey, c.TMDBAPIKey)
	set(&config.TMDBBaseURL, c.TMDBBaseURL)
	set(&config.TMDBLanguage, c.TMDBLanguage)
	set(&config.RateLimitRequests, c.RateLimitRequests)
	set(&config.LoginRateLimitAttempts, c.LoginRateLimitAttempts)
	set(&config.AuditQueueSize, c.AuditQueueSize)
	set(&config.SeedDefaultUsers, c.SeedDefaultUsers)
	set(&config.Environment, c.Environment)
	set(&config.LogLevel, c.LogLevel)

	copyDuration(&config.BusyTimeout, c.BusyTimeout)
	copyDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	copyDuration(&config.UpstreamTimeout, c.UpstreamTimeout)
	copyDuration(&config.SearchCacheTTL, c.SearchCacheTTL)
	copyDuration(&config.RateLimitWindow, c.RateLimitWindow)
	copyDuration(&config.AuditRetryDelay, c.AuditRetryDelay)
	copyDuration(&config.BlacklistSweepInterval, c.BlacklistSweepInterval)
}
