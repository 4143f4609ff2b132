package cache

import (
	"time"
)

// TimeUntilNextMidnight はlocにおける次の午前0時までの期間を返します。
// locがnilの場合はUTCを使用します。
func TimeUntilNextMidnight(now time.Time, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	// 翌日の午前0時（夏時間の切り替えがあってもtime.Dateが正規化する）
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	return next.Sub(now)
}
