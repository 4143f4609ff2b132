package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// TickerParam はパスパラメータ :ticker を取り出します。
// 値の正規化と検証はusecase側の責務です。
func TickerParam(c *gin.Context) (string, error) {
	var ticker string
	err := runtime.BindStyledParameterWithOptions("simple", "ticker", c.Param("ticker"), &ticker,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter ticker: %w", err)
	}
	return ticker, nil
}

// SearchQueryParam はクエリパラメータ q を取り出します。未指定の場合は空文字を返します。
func SearchQueryParam(c *gin.Context) (string, error) {
	var q *string
	if err := runtime.BindQueryParameter("form", true, false, "q", c.Request.URL.Query(), &q); err != nil {
		return "", fmt.Errorf("invalid format for parameter q: %w", err)
	}
	if q == nil {
		return "", nil
	}
	return *q, nil
}
