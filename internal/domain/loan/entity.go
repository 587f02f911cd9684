package loan

import (
	"time"
)

const (
	// BorrowingPeriod 借阅期限
	BorrowingPeriod = 14 * 24 * time.Hour

	// DailyFine 每逾期一天的罚款(分),1.00元
	DailyFine int64 = 100
)

// Record 借阅记录实体
// DDD设计说明:
// 1. 借阅记录只持久化,内存中只保留会员的持有集合
// 2. ReturnDate为nil表示未归还(open),归还后记录不再变化
// 3. 同一(会员, ISBN)同一时间最多只有一条未归还记录
type Record struct {
	ID         uint
	MemberID   string
	ISBN       string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	FinePaid   int64 // 归还时结算的罚款(分)
}

// NewRecord 创建未归还的借阅记录
// 到期日 = 借出时间 + BorrowingPeriod
func NewRecord(memberID, isbn string, borrowedAt time.Time) *Record {
	return &Record{
		MemberID:   memberID,
		ISBN:       isbn,
		BorrowDate: borrowedAt,
		DueDate:    DueDateFrom(borrowedAt),
	}
}

// DueDateFrom 计算到期日
func DueDateFrom(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(BorrowingPeriod)
}

// IsOpen 是否未归还
func (r *Record) IsOpen() bool {
	return r.ReturnDate == nil
}

// IsOverdue 在now时刻是否已逾期
func (r *Record) IsOverdue(now time.Time) bool {
	return r.IsOpen() && now.After(r.DueDate)
}
