package models

import "time"

// Movie is a catalog item saved by a user. TMDBID is unique across rows.
type Movie struct {
	ID          int64
	TMDBID      int64
	Title       string
	Overview    *string
	PosterPath  *string
	ReleaseDate *string
	VoteAverage *float64
	CreatedBy   int64
	CreatedAt   time.Time
}

// SearchResult is the normalized subset of an upstream catalog item.
type SearchResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

// ResultPage is one normalized page of catalog search results.
type ResultPage struct {
	Results      []SearchResult `json:"results"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	TotalResults int            `json:"totalResults"`
}
