package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储实现(GORM)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := &BookModel{
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt,
	}

	// 2. 插入数据库
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to create book", err)
	}

	// 3. 回填数据库生成的时间
	b.CreatedAt = model.CreatedAt
	return nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to query book", err)
	}
	return toBookEntity(&model), nil
}

// FindAll 全表扫描
func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	if err := getDB(ctx, r.db).Order("isbn ASC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to list books", err)
	}
	return toBookEntities(models), nil
}

// Search 书名或作者子串匹配
// 大小写敏感性取决于数据库(MySQL默认排序规则不敏感,SQLite对ASCII不敏感)
func (r *bookRepository) Search(ctx context.Context, query string) ([]*book.Book, error) {
	var models []BookModel
	pattern := likePattern(query)
	err := getDB(ctx, r.db).
		Where("title LIKE ? OR author LIKE ?", pattern, pattern).
		Order("title ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to search books", err)
	}
	return toBookEntities(models), nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ISBN:            model.ISBN,
		Title:           model.Title,
		Author:          model.Author,
		Publisher:       model.Publisher,
		PublicationYear: model.PublicationYear,
		TotalCopies:     model.TotalCopies,
		AvailableCopies: model.AvailableCopies,
		CreatedAt:       model.CreatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
