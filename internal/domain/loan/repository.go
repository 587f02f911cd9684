package loan

import (
	"context"
	"time"
)

// Repository 借阅记录仓储接口
// 设计说明:
// 1. Open/Close各自在一个存储事务内完成,同时维护books.available_copies与members.total_fines
// 2. 重启后从存储重新加载即可得到一致的副本数和罚款
type Repository interface {
	// Open 写入一条未归还记录,并把该书的在架副本数减1
	// 成功后回填record.ID
	Open(ctx context.Context, record *Record) error

	// FindOpen 查询(会员, ISBN)最近的一条未归还记录(按借出时间倒序取第一条)
	// 没有时返回ErrOpenLoanNotFound
	FindOpen(ctx context.Context, memberID, isbn string) (*Record, error)

	// Close 归还最近的一条未归还记录: 写入return_date和fine_paid,
	// 在架副本数加1,罚款计入会员累计罚款
	Close(ctx context.Context, memberID, isbn string, fine int64, returnedAt time.Time) error

	// ListOpen 所有未归还记录(启动时还原会员持有集合)
	ListOpen(ctx context.Context) ([]*Record, error)

	// ListByMember 会员的全部借阅记录(按借出时间倒序)
	ListByMember(ctx context.Context, memberID string) ([]*Record, error)
}
