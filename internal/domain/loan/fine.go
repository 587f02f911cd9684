package loan

import (
	"fmt"
	"time"
)

// OverdueDays 逾期的完整天数
// 不足一天的部分直接截断(不四舍五入),未到期返回0
func OverdueDays(due, now time.Time) int64 {
	if !now.After(due) {
		return 0
	}
	return int64(now.Sub(due) / (24 * time.Hour))
}

// CalculateFine 计算罚款(分) = 逾期完整天数 * DailyFine
func CalculateFine(due, now time.Time) int64 {
	return OverdueDays(due, now) * DailyFine
}

// FormatAmount 金额(分) → "元"字符串,保留两位小数
// 例:1400 → "14.00"
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
