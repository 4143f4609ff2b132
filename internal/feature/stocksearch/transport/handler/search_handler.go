// Package handler はstocksearchフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stock_forecast/internal/api"
	"stock_forecast/internal/feature/stocksearch/domain/entity"
	"stock_forecast/internal/feature/stocksearch/transport/http/dto"
)

// SearchUsecase は銘柄検索のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SearchUsecase interface {
	Search(ctx context.Context, query string) []entity.CatalogEntry
}

// SearchHandler は銘柄検索のHTTPリクエストを処理します。
type SearchHandler struct {
	uc SearchUsecase
}

// NewSearchHandler は新しい SearchHandler を作成します。
func NewSearchHandler(uc SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

// Search はクエリ文字列に一致する銘柄を最大10件返します。
//
// エンドポイント例:
// GET /stocks/search?q=tata
func (h *SearchHandler) Search(c *gin.Context) {
	q, err := api.SearchQueryParam(c)
	if err != nil {
		zap.L().Warn("search query rejected", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query"})
		return
	}

	entries := h.uc.Search(c.Request.Context(), q)
	out := make([]dto.SearchResultItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.SearchResultItem{Symbol: e.Symbol, Name: e.Name, Exchange: e.Exchange})
	}
	c.JSON(http.StatusOK, out)
}
