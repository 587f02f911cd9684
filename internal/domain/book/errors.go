package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "book not found")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "book already exists")

	// ErrNoCopiesAvailable 没有在架副本
	ErrNoCopiesAvailable = apperrors.New(apperrors.ErrCodeNoCopies, "book not available")

	// ErrOverReturn 副本已全部在架
	ErrOverReturn = apperrors.New(apperrors.ErrCodeOverReturn, "all copies already returned")

	// ErrInvalidCopies 副本数非法
	ErrInvalidCopies = apperrors.New(apperrors.ErrCodeInvalidParams, "total copies must not be negative")

	// ErrInvalidISBN ISBN为空
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "isbn is required")
)
