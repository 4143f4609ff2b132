// Package entity defines the domain models for the stocksearch feature.
package entity

// CatalogEntry represents a tradable security known to the search catalog.
// Entries are defined once at process start and never mutated.
type CatalogEntry struct {
	Symbol   string // Exchange ticker (e.g., "TCS.NS")
	Name     string // Company name
	Exchange string // Listing exchange (e.g., "NSE")
}
