package models

// RequestMeta identifies the client behind an audited request.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthLog records one login attempt.
type AuthLog struct {
	Username string
	Success  bool
	RequestMeta
}

// SearchLog records one catalog search, served from cache or upstream.
type SearchLog struct {
	UserID       int64
	Query        string
	ResultsCount int
	RequestMeta
}

// InsertLog records the outcome of one saved-movie insert. ErrorMessage is a
// short code, empty on success.
type InsertLog struct {
	UserID       int64
	TMDBID       int64
	MovieTitle   string
	Success      bool
	ErrorMessage string
	RequestMeta
}
