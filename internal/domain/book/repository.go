package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 副本数的持久化变更由借阅仓储在同一事务内完成,这里不暴露UpdateStock
type Repository interface {
	// Create 创建图书
	// ISBN重复时返回ErrISBNDuplicate,其他失败返回StoreFailure
	Create(ctx context.Context, book *Book) error

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// FindAll 全表扫描(启动加载内存索引)
	FindAll(ctx context.Context) ([]*Book, error)

	// Search 按书名或作者做子串匹配
	Search(ctx context.Context, query string) ([]*Book, error)
}
