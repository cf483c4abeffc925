package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/flagx"
	"github.com/dmitrijs2005/moviesearch/internal/timex"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when no -env-file flag is given. A missing file
// is not an error.
const DefaultEnvFile = ".env"

// LoadEnvFile loads variables from path into the process environment
// without overriding ones already set. A missing file is ignored; any other
// read or parse error is returned.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays Config with environment variables, after loading the
// dotenv file named by -env-file (or ./.env).
//
// Recognized variables:
//
//	PORT                 listen port ("3001") or address (":3001")
//	DATABASE_PATH        SQLite file
//	DB_POOL_SIZE         number of pooled connections
//	JWT_SECRET           HMAC secret for signing tokens
//	JWT_EXPIRES_IN       token lifetime: "24h", "7d" or seconds
//	FRONTEND_URL         allowed CORS origin
//	TMDB_API_KEY         catalog API key (VITE_TMDB_API_KEY is accepted too)
//	TMDB_BASE_URL        catalog API base URL
//	SEED_DEFAULT_USERS   true/false
//	GO_ENV / NODE_ENV    environment name
//	LOG_LEVEL            debug|info|warn|error
//
// A malformed value panics, the same as a malformed JSON file.
func parseEnv(config *Config) {
	if err := LoadEnvFile(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	if v, ok := lookup("PORT"); ok {
		config.ListenAddr = listenAddr(v)
	}
	if v, ok := lookup("DATABASE_PATH"); ok {
		config.DatabasePath = v
	}
	if v, ok := lookup("DB_POOL_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.PoolSize = n
	}
	if v, ok := lookup("DB_BUSY_TIMEOUT"); ok {
		config.BusyTimeout = busyTimeout(v)
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := lookup("JWT_EXPIRES_IN"); ok {
		d, err := timex.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}
	if v, ok := lookup("FRONTEND_URL"); ok {
		config.FrontendURL = v
	}
	if v, ok := lookup("TMDB_API_KEY", "VITE_TMDB_API_KEY"); ok {
		config.TMDBAPIKey = v
	}
	if v, ok := lookup("TMDB_BASE_URL"); ok {
		config.TMDBBaseURL = v
	}
	if v, ok := lookup("SEED_DEFAULT_USERS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.SeedDefaultUsers = b
	}
	if v, ok := lookup("GO_ENV", "NODE_ENV"); ok {
		config.Environment = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}

// busyTimeout reads a bare number as milliseconds, the unit of SQLite's
// busy_timeout pragma, and anything else as a Go duration.
func busyTimeout(v string) time.Duration {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	return d
}

// lookup returns the first non-empty variable among names.
func lookup(names ...string) (string, bool) {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v, true
		}
	}
	return "", false
}

// listenAddr accepts a bare port or a full host:port.
func listenAddr(v string) string {
	if strings.Contains(v, ":") {
		return v
	}
	return ":" + v
}
