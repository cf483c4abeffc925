package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Error   string                  `json:"error,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}

func writeErrorDetail(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, ErrorResponse{Message: msg, Error: detail})
}

// mapError translates service errors into status codes and client-safe
// messages. Raw error text is never sent except for configuration hints.
func mapError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Validation error", Errors: verrs})
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation error")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusForbidden, "Invalid or expired token")
	case errors.Is(err, common.ErrDuplicate):
		writeError(w, http.StatusConflict, "Movie is already saved")
	case errors.Is(err, common.ErrMissingSecret):
		writeErrorDetail(w, http.StatusInternalServerError, "Server is not configured", "JWT_SECRET is not configured")
	case errors.Is(err, common.ErrMissingAPIKey):
		writeErrorDetail(w, http.StatusInternalServerError, "TMDB API key is not configured", "Configure the TMDB_API_KEY environment variable")
	case errors.Is(err, common.ErrUpstreamAuth):
		writeErrorDetail(w, http.StatusInternalServerError, "Invalid TMDB API key", "Check the TMDB_API_KEY configuration")
	case errors.Is(err, common.ErrUpstreamUnavailable):
		writeErrorDetail(w, http.StatusInternalServerError, "Could not reach the TMDB API", "Check the network connection and try again")
	case errors.Is(err, common.ErrUpstream):
		writeErrorDetail(w, http.StatusInternalServerError, "Error searching movies", "The TMDB API returned an error, try again later")
	case errors.Is(err, common.ErrStorageContention):
		writeErrorDetail(w, http.StatusInternalServerError, "Error saving movie", "The database is busy, try again")
	case errors.Is(err, common.ErrStorage):
		writeError(w, http.StatusInternalServerError, "Error saving movie")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
