package dto

import (
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
)

// LoanRequest 借书/还书请求
type LoanRequest struct {
	MemberID string `json:"member_id" binding:"required" example:"M1001"`
	ISBN     string `json:"isbn" binding:"required" example:"9780134190440"`
}

// BorrowResponse 借书结果
type BorrowResponse struct {
	DueDate string `json:"due_date" example:"2024-01-29"`
}

// ReturnResponse 还书结果
type ReturnResponse struct {
	Fine        int64  `json:"fine" example:"1400"`
	FineDisplay string `json:"fine_display" example:"14.00"`
}

// LoanResponse 借阅记录
type LoanResponse struct {
	RecordID   uint    `json:"record_id" example:"1"`
	MemberID   string  `json:"member_id" example:"M1001"`
	ISBN       string  `json:"isbn" example:"9780134190440"`
	BorrowDate string  `json:"borrow_date" example:"2024-01-15 10:30:00"`
	DueDate    string  `json:"due_date" example:"2024-01-29 10:30:00"`
	ReturnDate *string `json:"return_date" example:"2024-01-20 09:00:00"` // 未归还为null
	FinePaid   int64   `json:"fine_paid" example:"0"`
	Overdue    bool    `json:"overdue" example:"false"`
}

// NewLoanList 记录转换，now用于判断是否逾期
func NewLoanList(records []*loan.Record, now time.Time) []*LoanResponse {
	list := make([]*LoanResponse, len(records))
	for i, rec := range records {
		item := &LoanResponse{
			RecordID:   rec.ID,
			MemberID:   rec.MemberID,
			ISBN:       rec.ISBN,
			BorrowDate: rec.BorrowDate.Format(timeLayout),
			DueDate:    rec.DueDate.Format(timeLayout),
			FinePaid:   rec.FinePaid,
			Overdue:    rec.IsOverdue(now),
		}
		if rec.ReturnDate != nil {
			s := rec.ReturnDate.Format(timeLayout)
			item.ReturnDate = &s
		}
		list[i] = item
	}
	return list
}
