// Package usecase implements the business logic for ticker search.
package usecase

import (
	"context"
	"strings"

	"stock_forecast/internal/feature/stocksearch/domain/entity"
)

// MaxResults は1回の検索で返す最大件数です。
const MaxResults = 10

// CatalogRepository abstracts the read-only ticker catalog.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CatalogRepository interface {
	Entries() []entity.CatalogEntry
}

// Config controls search behavior.
type Config struct {
	// MatchEmptyQuery decides what an empty query means. When true, "" is a substring of
	// every entry and the first MaxResults entries are returned; when false, nothing matches.
	MatchEmptyQuery bool
	// MaxResults caps the result length. Values outside 1..MaxResults fall back to MaxResults.
	MaxResults int
}

// SearchUsecase provides case-insensitive substring search over the catalog.
type SearchUsecase struct {
	catalog CatalogRepository
	cfg     Config
}

// NewSearchUsecase creates a new SearchUsecase.
func NewSearchUsecase(catalog CatalogRepository, cfg Config) *SearchUsecase {
	if cfg.MaxResults <= 0 || cfg.MaxResults > MaxResults {
		cfg.MaxResults = MaxResults
	}
	return &SearchUsecase{catalog: catalog, cfg: cfg}
}

// Search returns catalog entries whose symbol or name contains query, in catalog order.
// It never fails; ctx is accepted for symmetry with the other usecases.
func (u *SearchUsecase) Search(_ context.Context, query string) []entity.CatalogEntry {
	out := make([]entity.CatalogEntry, 0, u.cfg.MaxResults)
	if !u.cfg.MatchEmptyQuery && strings.TrimSpace(query) == "" {
		return out
	}

	// 照合はクエリをそのまま使う（前後の空白も一致対象）
	q := strings.ToLower(query)

	for _, e := range u.catalog.Entries() {
		if len(out) == u.cfg.MaxResults {
			break
		}
		if strings.Contains(strings.ToLower(e.Symbol), q) || strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
