// Package cache keeps recent catalog search pages in memory.
package cache

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a search page stays fresh.
const DefaultTTL = 5 * time.Minute

// SearchCache maps (query, page) to a result page. Entries expire after the
// configured TTL; Clear drops everything at once.
type SearchCache struct {
	c *gocache.Cache
}

func NewSearchCache(ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{c: gocache.New(ttl, 2*ttl)}
}

// Key builds the cache key for a normalized query and page.
func Key(query string, page int) string {
	return "search:" + query + ":" + strconv.Itoa(page)
}

func (s *SearchCache) Get(query string, page int) (*models.ResultPage, bool) {
	v, ok := s.c.Get(Key(query, page))
	if !ok {
		return nil, false
	}
	rp, ok := v.(*models.ResultPage)
	return rp, ok
}

func (s *SearchCache) Set(query string, page int, rp *models.ResultPage) {
	s.c.SetDefault(Key(query, page), rp)
}

// Clear removes every cached page.
func (s *SearchCache) Clear() {
	s.c.Flush()
}

func (s *SearchCache) Len() int {
	return s.c.ItemCount()
}
