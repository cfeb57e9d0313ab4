package api

import (
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// Post is the full post response type (aliased from the domain layer).
type Post = models.Post

// PostListItem is one row of a post listing (aliased from the index layer).
type PostListItem = index.PostRow

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// ResponsesResponse lists the posts responding to one URL.
type ResponsesResponse struct {
	Target    string         `json:"target" example:"https://example.com/post" validate:"required"`
	Responses []PostListItem `json:"responses" validate:"required"`
}
