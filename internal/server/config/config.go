// Package config handles configuration for the movie search server,
// including defaults, a JSON overlay, dotenv/environment variables and
// command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the movie search server.
//
// Fields:
//   - ListenAddr: HTTP bind address.
//   - DatabasePath / PoolSize / BusyTimeout: SQLite file, number of pooled
//     connections and how long a connection waits on a lock.
//   - SecretKey / TokenValidityDuration: HS256 signing secret and JWT lifetime.
//   - FrontendURL: the only origin allowed by CORS.
//   - TMDB*: catalog API credentials and request settings.
//   - SearchCacheTTL: freshness of cached search pages.
//   - RateLimit*: per-IP limits for /api and for login failures.
//   - Audit*: async audit queue size and contention retry delay.
type Config struct {
	ListenAddr             string
	DatabasePath           string
	PoolSize               int
	BusyTimeout            time.Duration
	SecretKey              string
	TokenValidityDuration  time.Duration
	FrontendURL            string
	TMDBAPIKey             string
	TMDBBaseURL            string
	TMDBLanguage           string
	UpstreamTimeout        time.Duration
	SearchCacheTTL         time.Duration
	RateLimitWindow        time.Duration
	RateLimitRequests      int
	LoginRateLimitAttempts int
	AuditQueueSize         int
	AuditRetryDelay        time.Duration
	BlacklistSweepInterval time.Duration
	SeedDefaultUsers       bool
	Environment            string
	LogLevel               string
}

// LoadDefaults populates Config with development defaults. SecretKey and
// TMDBAPIKey stay empty and must come from the environment.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":3001"
	c.DatabasePath = "data/database.sqlite"
	c.PoolSize = 5
	c.BusyTimeout = 5 * time.Second
	c.SecretKey = ""
	c.TokenValidityDuration = 24 * time.Hour
	c.FrontendURL = "http://localhost:5173"
	c.TMDBAPIKey = ""
	c.TMDBBaseURL = "https://api.themoviedb.org/3"
	c.TMDBLanguage = "pt-BR"
	c.UpstreamTimeout = 10 * time.Second
	c.SearchCacheTTL = 5 * time.Minute
	c.RateLimitWindow = 15 * time.Minute
	c.RateLimitRequests = 100
	c.LoginRateLimitAttempts = 5
	c.AuditQueueSize = 256
	c.AuditRetryDelay = 200 * time.Millisecond
	c.BlacklistSweepInterval = 10 * time.Minute
	c.SeedDefaultUsers = true
	c.Environment = "development"
	c.LogLevel = "info"
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
