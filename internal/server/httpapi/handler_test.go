package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/auth"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClaims(r *http.Request, userID int64) *http.Request {
	c := &auth.Claims{UserID: userID, Username: "admin"}
	return r.WithContext(contextWithClaims(r.Context(), c))
}

func TestLogin_Success(t *testing.T) {
	exp := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	fa := &fakeAuth{loginRes: &services.LoginResult{
		Token:     "tok",
		ExpiresAt: exp,
		User:      &models.User{ID: 7, Username: "admin"},
	}}
	h := NewHandler(fa, &fakeSearcher{}, &fakeSaver{}, logging.Discard())

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"admin123"}`))
	r.RemoteAddr = "203.0.113.1:9999"
	r.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()

	h.Login(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "tok", body.Token)
	assert.Equal(t, int64(7), body.User.ID)
	assert.Equal(t, "admin", body.User.Username)
	assert.True(t, exp.Equal(body.ExpiresAt))

	assert.Equal(t, "admin", fa.lastLogin.Username)
	assert.Equal(t, "admin123", fa.lastLogin.Password)
	assert.Equal(t, "203.0.113.1", fa.lastMeta.IP)
	assert.Equal(t, "test-agent", fa.lastMeta.UserAgent)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"malformed body", `{"username":`, nil, http.StatusBadRequest},
		{"bad credentials", `{"username":"admin","password":"nope123"}`, common.ErrorUnauthorized, http.StatusUnauthorized},
		{"missing secret", `{"username":"admin","password":"admin123"}`, common.ErrMissingSecret, http.StatusInternalServerError},
		{"internal", `{"username":"admin","password":"admin123"}`, common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeAuth{loginErr: tt.err}, &fakeSearcher{}, &fakeSaver{}, logging.Discard())
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, decodeError(t, rec).Success)
		})
	}
}

func TestLogout_AlwaysOK(t *testing.T) {
	fa := &fakeAuth{}
	h := NewHandler(fa, &fakeSearcher{}, &fakeSaver{}, logging.Discard())

	for _, header := range []string{"", "Bearer garbage", "Bearer tok"} {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.Logout(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)
		var body messageResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.Success)
	}

	assert.Equal(t, []string{"", "garbage", "tok"}, fa.loggedOut)
}

func TestSearch(t *testing.T) {
	poster := "/p.jpg"
	fs := &fakeSearcher{rp: &models.ResultPage{
		Results:      []models.SearchResult{{ID: 603, Title: "Matrix", PosterPath: &poster}},
		Page:         2,
		TotalPages:   500,
		TotalResults: 9000,
	}}
	h := NewHandler(&fakeAuth{}, fs, &fakeSaver{}, logging.Discard())

	rec := httptest.NewRecorder()
	h.Search(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/movies/search?q=Matrix&page=2", nil), 5))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(500), body["totalPages"])
	assert.Equal(t, float64(9000), body["totalResults"])
	require.Len(t, body["results"], 1)

	assert.Equal(t, int64(5), fs.lastUID)
	assert.Equal(t, services.SearchRequest{Query: "Matrix", Page: 2}, fs.lastReq)
}

func TestSearch_PageDefaultsAndErrors(t *testing.T) {
	fs := &fakeSearcher{rp: &models.ResultPage{Results: []models.SearchResult{}, Page: 1}}
	h := NewHandler(&fakeAuth{}, fs, &fakeSaver{}, logging.Discard())

	rec := httptest.NewRecorder()
	h.Search(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/movies/search?q=Matrix", nil), 1))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fs.lastReq.Page)

	rec = httptest.NewRecorder()
	h.Search(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/movies/search?q=Matrix&page=abc", nil), 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "page", body.Errors[0].Field)

	fs.err = common.ErrUpstreamAuth
	rec = httptest.NewRecorder()
	h.Search(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/movies/search?q=Matrix", nil), 1))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Invalid TMDB API key", decodeError(t, rec).Message)
}

func TestInsertMovie(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		saver      *fakeSaver
		wantStatus int
	}{
		{"created", `{"tmdb_id":603,"title":"Matrix","vote_average":8.2}`, &fakeSaver{id: 11}, http.StatusCreated},
		{"duplicate", `{"tmdb_id":603,"title":"Matrix"}`, &fakeSaver{err: &services.DuplicateError{TMDBID: 603}}, http.StatusConflict},
		{"string id", `{"tmdb_id":"603","title":"Matrix"}`, &fakeSaver{}, http.StatusBadRequest},
		{"storage", `{"tmdb_id":603,"title":"Matrix"}`, &fakeSaver{err: errors.Join(common.ErrStorage, errors.New("disk"))}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeAuth{}, &fakeSearcher{}, tt.saver, logging.Discard())
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/movies/insert", strings.NewReader(tt.body))
			h.InsertMovie(rec, withClaims(r, 3))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var body insertResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.True(t, body.Success)
			assert.Equal(t, int64(11), body.MovieID)
			assert.Equal(t, int64(3), tt.saver.lastUID)
			assert.Equal(t, int64(603), tt.saver.lastReq.TMDBID)
			require.NotNil(t, tt.saver.lastReq.VoteAverage)
			assert.InDelta(t, 8.2, *tt.saver.lastReq.VoteAverage, 1e-9)
		})
	}
}

func TestHandlers_RequireClaims(t *testing.T) {
	h := NewHandler(&fakeAuth{}, &fakeSearcher{}, &fakeSaver{}, logging.Discard())

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/movies/search?q=ab", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.InsertMovie(rec, httptest.NewRequest(http.MethodPost, "/api/movies/insert", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
