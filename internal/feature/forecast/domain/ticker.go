package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxTickerLength はティッカーの最大文字数です（DBカラム長と一致）。
const MaxTickerLength = 32

// validTicker は正規化後のティッカーに許可される文字パターンです（例: TCS.NS, M&M.NS, ^NSEI）。
var validTicker = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.&^=_-]*$`)

// NormalizeTicker は前後の空白を除去して大文字化し、形式を検証します。
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTicker)
	}
	if len(t) > MaxTickerLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidTicker, MaxTickerLength)
	}
	if !validTicker.MatchString(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	return t, nil
}
