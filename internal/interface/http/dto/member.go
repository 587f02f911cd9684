package dto

import (
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
)

// AddMemberRequest HTTP办证请求
type AddMemberRequest struct {
	MemberID string `json:"member_id" binding:"required,max=32" example:"M1001"`
	Name     string `json:"name" binding:"required,max=100" example:"Alice"`
	Email    string `json:"email" binding:"omitempty,email,max=100" example:"alice@example.com"`
	Phone    string `json:"phone" binding:"max=32" example:"555-0100"`
	Address  string `json:"address" binding:"max=200" example:"1 Main St"`
}

// SetMemberStatusRequest 启用/停用
// 使用指针区分"未传"和false
type SetMemberStatusRequest struct {
	Active *bool `json:"active" binding:"required" example:"false"`
}

// PayFineRequest 缴纳罚款，金额单位为分
type PayFineRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1" example:"500"`
}

// PayFineResponse 缴费后剩余欠款
type PayFineResponse struct {
	Remaining        int64  `json:"remaining" example:"900"`
	RemainingDisplay string `json:"remaining_display" example:"9.00"`
}

// MemberResponse HTTP会员响应
type MemberResponse struct {
	MemberID          string   `json:"member_id" example:"M1001"`
	Name              string   `json:"name" example:"Alice"`
	Email             string   `json:"email" example:"alice@example.com"`
	Phone             string   `json:"phone" example:"555-0100"`
	Address           string   `json:"address" example:"1 Main St"`
	MembershipDate    string   `json:"membership_date" example:"2024-01-15 10:30:00"`
	IsActive          bool     `json:"is_active" example:"true"`
	BorrowedBooks     []string `json:"borrowed_books"`
	TotalFines        int64    `json:"total_fines" example:"1400"`           // 分
	TotalFinesDisplay string   `json:"total_fines_display" example:"14.00"` // 方便前端显示
}

// NewMemberResponse 领域实体 → 响应
func NewMemberResponse(m *member.Member) *MemberResponse {
	return &MemberResponse{
		MemberID:          m.MemberID,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		MembershipDate:    m.MembershipDate.Format(timeLayout),
		IsActive:          m.IsActive,
		BorrowedBooks:     m.BorrowedBooks(),
		TotalFines:        m.TotalFines,
		TotalFinesDisplay: loan.FormatAmount(m.TotalFines),
	}
}
