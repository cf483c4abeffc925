package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// requestTimeout bounds a request, including the upstream catalog call.
const requestTimeout = 30 * time.Second

// Router is the API handler together with its login limiter, whose stale
// records are swept by RunSweeper.
type Router struct {
	http.Handler
	login *loginRateLimiter
}

// NewRouter mounts the API routes:
//
//	GET  /api/health
//	POST /api/auth/login
//	POST /api/auth/logout
//	GET  /api/movies/search   (bearer token)
//	POST /api/movies/insert   (bearer token)
func NewRouter(h *Handler, cfg *config.Config, l logging.Logger) *Router {
	login := newLoginRateLimiter(cfg.LoginRateLimitAttempts, cfg.RateLimitWindow)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(requestLogger(l.With("module", "http_access")))
	r.Use(middleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(login.middleware).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Use(h.accessToken)
			r.Get("/search", h.Search)
			r.Post("/insert", h.InsertMovie)
		})
	})

	return &Router{Handler: r, login: login}
}

// RunSweeper drops expired login limiter records every interval until ctx
// is done.
func (rt *Router) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rt.login.sweep()
		}
	}
}
