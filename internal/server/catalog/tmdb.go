// Package catalog talks to the TMDB movie catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/netx"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "pt-BR"
	DefaultTimeout  = 10 * time.Second

	// MaxPages is the deepest page TMDB will serve for a search.
	MaxPages = 500
)

type Options struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// TMDBClient runs movie searches against the TMDB v3 API.
type TMDBClient struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
	logger   logging.Logger
}

func NewTMDBClient(opts Options, l logging.Logger) *TMDBClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &TMDBClient{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiKey:   opts.APIKey,
		language: opts.Language,
		http:     &http.Client{Timeout: opts.Timeout},
		logger:   l.With("module", "catalog"),
	}
}

type tmdbMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type tmdbSearchResponse struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

func (c *TMDBClient) searchURL(query string, page int) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("include_adult", "false")
	q.Set("language", c.language)
	return c.baseURL + "/search/movie?" + q.Encode()
}

// SearchMovies fetches one page of results for query. Upstream 401 maps to
// common.ErrUpstreamAuth, other non-2xx or malformed bodies to
// common.ErrUpstream and transport failures to common.ErrUpstreamUnavailable.
func (c *TMDBClient) SearchMovies(ctx context.Context, query string, page int) (*models.ResultPage, error) {
	if c.apiKey == "" {
		return nil, common.ErrMissingAPIKey
	}

	c.logger.Info(ctx, "searching catalog", "query", query, "page", page)

	var body tmdbSearchResponse
	err := netx.GetJSON(ctx, c.http, c.searchURL(query, page), &body)
	if err != nil {
		var se *netx.StatusError
		switch {
		case errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized:
			c.logger.Error(ctx, "catalog rejected api key", "status", se.StatusCode)
			return nil, common.ErrUpstreamAuth
		case errors.As(err, &se):
			c.logger.Error(ctx, "catalog error", "status", se.StatusCode, "body", se.Body)
			return nil, fmt.Errorf("%w: status %d", common.ErrUpstream, se.StatusCode)
		case errors.Is(err, netx.ErrDecode):
			c.logger.Error(ctx, "catalog returned malformed body", "error", err)
			return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
		default:
			c.logger.Error(ctx, "catalog unreachable", "error", redact(err, c.apiKey))
			return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, redact(err, c.apiKey))
		}
	}

	return normalize(&body, page), nil
}

func normalize(body *tmdbSearchResponse, requestedPage int) *models.ResultPage {
	rp := &models.ResultPage{
		Results:      make([]models.SearchResult, 0, len(body.Results)),
		Page:         body.Page,
		TotalPages:   min(body.TotalPages, MaxPages),
		TotalResults: body.TotalResults,
	}
	if rp.Page == 0 {
		rp.Page = requestedPage
	}
	for _, m := range body.Results {
		rp.Results = append(rp.Results, models.SearchResult{
			ID:          m.ID,
			Title:       m.Title,
			Overview:    m.Overview,
			PosterPath:  m.PosterPath,
			ReleaseDate: m.ReleaseDate,
			VoteAverage: m.VoteAverage,
		})
	}
	return rp
}

// redact keeps the API key out of transport errors, which echo the URL.
func redact(err error, key string) string {
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), key, "***")
}
