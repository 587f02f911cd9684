package loan

import (
	"time"
)

// EventType 借阅事件类型,同时用作MQ路由键
type EventType string

const (
	EventBorrowed EventType = "loan.borrowed"
	EventReturned EventType = "loan.returned"
	EventFined    EventType = "member.fined"
	EventFinePaid EventType = "member.fine_paid"
)

// Event 借阅领域事件
// 在状态变更提交成功之后才会发布
type Event struct {
	Type       EventType `json:"type"`
	MemberID   string    `json:"member_id"`
	ISBN       string    `json:"isbn,omitempty"`
	DueDate    time.Time `json:"due_date,omitempty"`
	Amount     int64     `json:"amount,omitempty"` // 罚款或缴费金额(分)
	OccurredAt time.Time `json:"occurred_at"`
}
