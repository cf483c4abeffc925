package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/auth"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/services"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
)

// Authenticator is the session service used by the handlers.
type Authenticator interface {
	Login(ctx context.Context, req services.LoginRequest, meta models.RequestMeta) (*services.LoginResult, error)
	Authorize(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, token string)
}

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, userID int64, req services.SearchRequest, meta models.RequestMeta) (*models.ResultPage, error)
}

// MovieSaver stores catalog items.
type MovieSaver interface {
	Insert(ctx context.Context, userID int64, req services.InsertMovieRequest, meta models.RequestMeta) (int64, error)
}

// Handler serves the JSON API.
type Handler struct {
	auth   Authenticator
	search Searcher
	movies MovieSaver
	logger logging.Logger
}

func NewHandler(a Authenticator, s Searcher, m MovieSaver, l logging.Logger) *Handler {
	return &Handler{auth: a, search: s, movies: m, logger: l.With("module", "http")}
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type loginResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type searchResponse struct {
	Success bool `json:"success"`
	*models.ResultPage
}

type insertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	MovieID int64  `json:"movieId"`
}

type healthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req, requestMeta(r))
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      userResponse{ID: res.User.ID, Username: res.User.Username},
	})
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), bearerToken(r))
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logout successful"})
}

// Search handles GET /api/movies/search?q=&page=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication token not provided")
		return
	}

	q := r.URL.Query()
	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			mapError(w, validation.Errors{{Field: "page", Message: "page must be a number"}})
			return
		}
		page = n
	}

	rp, err := h.search.Search(r.Context(), claims.UserID, services.SearchRequest{Query: q.Get("q"), Page: page}, requestMeta(r))
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Success: true, ResultPage: rp})
}

// InsertMovie handles POST /api/movies/insert.
func (h *Handler) InsertMovie(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication token not provided")
		return
	}

	var req services.InsertMovieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.movies.Insert(r.Context(), claims.UserID, req, requestMeta(r))
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, insertResponse{Success: true, Message: "Movie saved", MovieID: id})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Success: true, Status: "ok"})
}
