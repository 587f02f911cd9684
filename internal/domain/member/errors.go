package member

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 会员领域错误定义
var (
	// ErrMemberNotFound 会员不存在
	ErrMemberNotFound = apperrors.New(apperrors.ErrCodeMemberNotFound, "member not found")

	// ErrMemberDuplicate 会员编号已存在
	ErrMemberDuplicate = apperrors.New(apperrors.ErrCodeMemberDuplicate, "member already exists")

	// ErrMemberInactive 会员已停用
	ErrMemberInactive = apperrors.New(apperrors.ErrCodeMemberInactive, "member is not active")

	// ErrNotBorrowed 会员未借阅该书
	ErrNotBorrowed = apperrors.New(apperrors.ErrCodeNotBorrowed, "book was not borrowed by this member")

	// ErrAlreadyBorrowed 会员已持有该书
	ErrAlreadyBorrowed = apperrors.New(apperrors.ErrCodeAlreadyBorrowed, "book already borrowed by this member")

	// ErrFineOverpayment 缴纳金额超过欠款
	ErrFineOverpayment = apperrors.New(apperrors.ErrCodeFineOverpayment, "fine payment exceeds outstanding fines")

	// ErrInvalidAmount 金额非法
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "amount must be greater than 0")

	// ErrInvalidMemberID 会员编号为空
	ErrInvalidMemberID = apperrors.New(apperrors.ErrCodeInvalidParams, "member id is required")
)
