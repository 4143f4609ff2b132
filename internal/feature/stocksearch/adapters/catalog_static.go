// Package adapters はstocksearchフィーチャーのカタログ実装を提供します。
package adapters

import (
	"stock_forecast/internal/feature/stocksearch/domain/entity"
	"stock_forecast/internal/feature/stocksearch/usecase"
)

// nseCatalog はNSE上場の主要銘柄です。定義順が検索結果の順序になります。
var nseCatalog = [...]entity.CatalogEntry{
	{Symbol: "RELIANCE.NS", Name: "Reliance Industries Limited", Exchange: "NSE"},
	{Symbol: "TCS.NS", Name: "Tata Consultancy Services Limited", Exchange: "NSE"},
	{Symbol: "INFY.NS", Name: "Infosys Limited", Exchange: "NSE"},
	{Symbol: "HDFC.NS", Name: "HDFC Bank Limited", Exchange: "NSE"},
	{Symbol: "ICICIBANK.NS", Name: "ICICI Bank Limited", Exchange: "NSE"},
	{Symbol: "BHARTIARTL.NS", Name: "Bharti Airtel Limited", Exchange: "NSE"},
	{Symbol: "HDFCBANK.NS", Name: "HDFC Bank Limited", Exchange: "NSE"},
	{Symbol: "SBIN.NS", Name: "State Bank of India", Exchange: "NSE"},
	{Symbol: "WIPRO.NS", Name: "Wipro Limited", Exchange: "NSE"},
	{Symbol: "TATAMOTORS.NS", Name: "Tata Motors Limited", Exchange: "NSE"},
	{Symbol: "LT.NS", Name: "Larsen & Toubro Limited", Exchange: "NSE"},
	{Symbol: "ONGC.NS", Name: "Oil and Natural Gas Corporation", Exchange: "NSE"},
	{Symbol: "TECHM.NS", Name: "Tech Mahindra Limited", Exchange: "NSE"},
	{Symbol: "SUNPHARMA.NS", Name: "Sun Pharmaceutical Industries Limited", Exchange: "NSE"},
	{Symbol: "ULTRACEMCO.NS", Name: "UltraTech Cement Limited", Exchange: "NSE"},
	{Symbol: "POWERGRID.NS", Name: "Power Grid Corporation of India Limited", Exchange: "NSE"},
	{Symbol: "NTPC.NS", Name: "NTPC Limited", Exchange: "NSE"},
	{Symbol: "COALINDIA.NS", Name: "Coal India Limited", Exchange: "NSE"},
	{Symbol: "MARUTI.NS", Name: "Maruti Suzuki India Limited", Exchange: "NSE"},
	{Symbol: "TITAN.NS", Name: "Titan Company Limited", Exchange: "NSE"},
	{Symbol: "BAJFINANCE.NS", Name: "Bajaj Finance Limited", Exchange: "NSE"},
	{Symbol: "M&M.NS", Name: "Mahindra & Mahindra Limited", Exchange: "NSE"},
	{Symbol: "HCLTECH.NS", Name: "HCL Technologies Limited", Exchange: "NSE"},
	{Symbol: "DRREDDY.NS", Name: "Dr. Reddys Laboratories Limited", Exchange: "NSE"},
	{Symbol: "ADANIPORTS.NS", Name: "Adani Ports and Special Economic Zone Limited", Exchange: "NSE"},
}

// staticCatalog はCatalogRepositoryのインメモリ実装です。
// 保持するスライスは読み取り専用で、ゴルーチン間で共有できます。
type staticCatalog struct {
	entries []entity.CatalogEntry
}

var _ usecase.CatalogRepository = (*staticCatalog)(nil)

// NewStaticCatalog は組み込みのNSEカタログを返します。
func NewStaticCatalog() *staticCatalog {
	return NewCatalog(nseCatalog[:])
}

// NewCatalog は任意のエントリでカタログを生成します。引数はコピーされます。
func NewCatalog(entries []entity.CatalogEntry) *staticCatalog {
	cp := make([]entity.CatalogEntry, len(entries))
	copy(cp, entries)
	return &staticCatalog{entries: cp}
}

// Entries は定義順のエントリを返します。呼び出し側による変更がカタログに影響しないようコピーを返します。
func (c *staticCatalog) Entries() []entity.CatalogEntry {
	out := make([]entity.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Symbols は定義順の銘柄コードのみを返します。
func (c *staticCatalog) Symbols() []string {
	codes := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		codes = append(codes, e.Symbol)
	}
	return codes
}
