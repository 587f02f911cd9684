package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrOpenLoanNotFound 没有未归还的借阅记录
	ErrOpenLoanNotFound = apperrors.New(apperrors.ErrCodeLoanNotFound, "no open borrowing record")

	// ErrBorrowNotRecorded 借阅记录写入失败
	ErrBorrowNotRecorded = apperrors.New(apperrors.ErrCodeBorrowNotStored, "failed to record borrowing")

	// ErrReturnNotRecorded 归还记录写入失败
	ErrReturnNotRecorded = apperrors.New(apperrors.ErrCodeReturnNotStored, "failed to record return")
)
