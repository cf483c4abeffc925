// Package server initializes and runs the movie search API.
// It opens the SQLite pool, applies migrations, seeds default accounts,
// wires the services and serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/filex"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/cache"
	"github.com/dmitrijs2005/moviesearch/internal/server/catalog"
	"github.com/dmitrijs2005/moviesearch/internal/server/config"
	"github.com/dmitrijs2005/moviesearch/internal/server/httpapi"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviesearch/internal/server/services"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	pool      *dbx.Pool
	audit     *services.AuditLogger
	blacklist *services.TokenBlacklist
	router    *httpapi.Router
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.Environment, c.LogLevel)

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("db dir error: %w", err)
	}

	pool, err := dbx.OpenPool(ctx, c.DatabasePath, dbx.PoolOptions{Size: c.PoolSize, BusyTimeout: c.BusyTimeout})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewSQLiteRepositoryManager()
	if err := rm.RunMigrations(ctx, pool.Primary()); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	if c.SeedDefaultUsers {
		if _, err := services.SeedUsers(ctx, pool, rm, services.DefaultUsers, logger); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("seed error: %w", err)
		}
	}

	if c.SecretKey == "" {
		logger.Warn(ctx, "JWT_SECRET is not set, login and protected routes will fail")
	}
	if c.TMDBAPIKey == "" {
		logger.Warn(ctx, "TMDB_API_KEY is not set, searches will fail")
	}

	v := validation.New()
	audit := services.NewAuditLogger(pool, rm, c, logger)
	bl := services.NewTokenBlacklist(pool, rm, logger)
	sc := cache.NewSearchCache(c.SearchCacheTTL)
	tmdb := catalog.NewTMDBClient(catalog.Options{
		BaseURL:  c.TMDBBaseURL,
		APIKey:   c.TMDBAPIKey,
		Language: c.TMDBLanguage,
		Timeout:  c.UpstreamTimeout,
	}, logger)

	h := httpapi.NewHandler(
		services.NewAuthenticator(pool, rm, bl, audit, v, c, logger),
		services.NewSearchProxy(tmdb, sc, audit, v, logger),
		services.NewMovieWriter(pool, rm, sc, audit, v, logger),
		logger,
	)

	return &App{
		config:    c,
		logger:    logger,
		pool:      pool,
		audit:     audit,
		blacklist: bl,
		router:    httpapi.NewRouter(h, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.ListenAddr, app.router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops the HTTP server, drains the audit queue and closes the pool.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)
	app.audit.Start()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.blacklist.RunSweeper(ctx, app.config.BlacklistSweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.router.RunSweeper(ctx, app.config.RateLimitWindow)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.audit.Close()
	if err := app.pool.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
