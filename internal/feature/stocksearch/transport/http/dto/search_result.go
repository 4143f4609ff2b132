// Package dto defines data transfer objects for the stocksearch HTTP API.
package dto

// SearchResultItem represents a catalog entry in the search response.
type SearchResultItem struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}
