package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3001")
//	-d string   SQLite database file
//	-n int      pool size
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-f string   allowed frontend origin
//	-k string   TMDB API key
//	-l string   log level
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with -c/-config and -env-file.
//   - The token validity flag is accepted as an integer in minutes and then
//     converted to time.Duration. It only applies when given, so a
//     sub-minute lifetime from the environment survives.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-n", "-s", "-t", "-f", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.DatabasePath, "d", config.DatabasePath, "SQLite database file")
	fs.IntVar(&config.PoolSize, "n", config.PoolSize, "database pool size")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "allowed frontend origin")
	fs.StringVar(&config.TMDBAPIKey, "k", config.TMDBAPIKey, "TMDB API key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
		}
	})
}
