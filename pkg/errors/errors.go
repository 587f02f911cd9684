package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误
// 设计说明：
// 1. Code用于调用方区分错误类别（NotFound、PreconditionFailed、DuplicateKey、StoreFailure）
// 2. Message是可直接展示给调用方的原因说明
// 3. Err是底层错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 失败原因
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较
// 包装后的AppError（WrapCode）仍然可以用errors.Is匹配到预定义的哨兵错误
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapCode 以指定错误码包装底层错误
func WrapCode(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 400xx: 业务前置条件不满足（PreconditionFailed）
// - 401xx: 认证授权
// - 404xx: 资源不存在（NotFound）
// - 409xx: 唯一键冲突（DuplicateKey）
// - 422xx: 参数错误
// - 5xxxx: 存储或外部服务失败（StoreFailure）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal        = 50000 // 内部错误
	ErrCodeDatabaseError   = 50001 // 数据库错误
	ErrCodeRedisError      = 50002 // Redis错误
	ErrCodeBorrowNotStored = 50003 // 借阅记录写入失败
	ErrCodeReturnNotStored = 50004 // 归还记录写入失败
	ErrCodeMQError         = 50005 // 消息队列错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期
	ErrCodeForbidden    = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeMemberNotFound = 40401 // 会员不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeLoanNotFound   = 40403 // 未归还的借阅记录不存在

	// 业务规则错误（40000-40099）
	ErrCodePrecondition    = 40000 // 业务规则校验失败(通用)
	ErrCodeNoCopies        = 40001 // 无可借副本
	ErrCodeMemberInactive  = 40002 // 会员已停用
	ErrCodeNotBorrowed     = 40003 // 会员未借阅该书
	ErrCodeFineOverpayment = 40004 // 缴纳金额超过欠款
	ErrCodeOverReturn      = 40005 // 副本已全部归还
	ErrCodeAlreadyBorrowed = 40006 // 会员已借阅该书

	// 唯一键冲突（40900-40999）
	ErrCodeDuplicateEntry  = 40900 // 重复记录(通用)
	ErrCodeISBNDuplicate   = 40901 // ISBN已存在
	ErrCodeMemberDuplicate = 40902 // 会员编号已存在

	// 参数错误（42200-42299）
	ErrCodeInvalidParams = 42200 // 参数错误
	ErrCodeBindError     = 42201 // 参数绑定失败
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal      = New(ErrCodeInternal, "internal error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "record store failure")
	ErrRedisError    = New(ErrCodeRedisError, "cache failure")

	ErrUnauthorized = New(ErrCodeUnauthorized, "authentication required")
	ErrInvalidToken = New(ErrCodeInvalidToken, "invalid token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "token expired")
	ErrForbidden    = New(ErrCodeForbidden, "forbidden")

	ErrInvalidParams = New(ErrCodeInvalidParams, "invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "malformed request")
)

// =========================================
// 错误分类
// =========================================

// Kind 错误类别
type Kind int

const (
	KindUnknown Kind = iota
	KindPrecondition
	KindNotFound
	KindDuplicate
	KindInvalid
	KindAuth
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition_failed"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate_key"
	case KindInvalid:
		return "invalid_params"
	case KindAuth:
		return "unauthorized"
	case KindStore:
		return "store_failure"
	default:
		return "unknown"
	}
}

// KindOf 根据错误码区间判断错误类别
// 非AppError按StoreFailure处理
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return KindStore
	}
	switch appErr.Code / 100 {
	case 400:
		return KindPrecondition
	case 401:
		return KindAuth
	case 404:
		return KindNotFound
	case 409:
		return KindDuplicate
	case 422:
		return KindInvalid
	default:
		return KindStore
	}
}

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal error")
}
