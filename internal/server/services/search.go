package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
)

// SearchRequest is one catalog search.
type SearchRequest struct {
	Query string `json:"q" validate:"required,min=2,max=100"`
	Page  int    `json:"page" validate:"gte=1,lte=500"`
}

// Catalog is the upstream movie catalog.
type Catalog interface {
	SearchMovies(ctx context.Context, query string, page int) (*models.ResultPage, error)
}

// ResultCache holds normalized result pages keyed by query and page.
type ResultCache interface {
	Get(query string, page int) (*models.ResultPage, bool)
	Set(query string, page int, rp *models.ResultPage)
	CacheInvalidator
}

// SearchProxy validates searches, serves them from the cache when possible
// and forwards misses to the catalog.
type SearchProxy struct {
	catalog   Catalog
	cache     ResultCache
	audit     Auditor
	validator *validation.Validator
	logger    logging.Logger
}

func NewSearchProxy(c Catalog, rc ResultCache, audit Auditor, v *validation.Validator, l logging.Logger) *SearchProxy {
	return &SearchProxy{
		catalog:   c,
		cache:     rc,
		audit:     audit,
		validator: v,
		logger:    l.With("module", "search"),
	}
}

// Search returns one page of results. Upstream failures are returned as
// the catalog reports them (common.ErrUpstream, common.ErrUpstreamAuth,
// common.ErrUpstreamUnavailable or common.ErrMissingAPIKey). Every answered
// search is audited, cache hits included.
func (s *SearchProxy) Search(ctx context.Context, userID int64, req SearchRequest, meta models.RequestMeta) (*models.ResultPage, error) {
	req.Query = strings.TrimSpace(req.Query)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if rp, ok := s.cache.Get(req.Query, req.Page); ok {
		s.logger.Debug(ctx, "search cache hit", "query", req.Query, "page", req.Page)
		s.auditSearch(userID, req.Query, len(rp.Results), meta)
		return rp, nil
	}

	rp, err := s.catalog.SearchMovies(ctx, req.Query, req.Page)
	if err != nil {
		return nil, err
	}

	s.cache.Set(req.Query, req.Page, rp)
	s.auditSearch(userID, req.Query, len(rp.Results), meta)

	return rp, nil
}

func (s *SearchProxy) auditSearch(userID int64, query string, count int, meta models.RequestMeta) {
	s.audit.LogSearch(models.SearchLog{UserID: userID, Query: query, ResultsCount: count, RequestMeta: meta})
}
