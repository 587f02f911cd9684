package member

import (
	"context"
)

// Repository 会员仓储接口
// 借阅集合不在会员表中持久化,由未归还的借阅记录还原
type Repository interface {
	// Create 创建会员
	// 会员编号重复时返回ErrMemberDuplicate
	Create(ctx context.Context, member *Member) error

	// FindByID 根据会员编号查找
	FindByID(ctx context.Context, memberID string) (*Member, error)

	// FindAll 全表扫描(启动加载内存索引)
	FindAll(ctx context.Context) ([]*Member, error)

	// AddFines 原子调整累计罚款
	// delta为正数表示增加,负数表示缴纳;调整后不能为负,否则返回ErrFineOverpayment
	AddFines(ctx context.Context, memberID string, delta int64) error

	// UpdateStatus 更新启用状态
	UpdateStatus(ctx context.Context, memberID string, active bool) error
}
