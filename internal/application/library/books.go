package library

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/tracing"
)

// AddBookRequest 上架参数
type AddBookRequest struct {
	ISBN            string
	Title           string
	Author          string
	Publisher       string
	PublicationYear int
	TotalCopies     int
}

// AddBook 上架新书
// 存储成功后才建立内存条目，可借副本数等于总副本数
func (l *Library) AddBook(ctx context.Context, req AddBookRequest) (_ *book.Book, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.AddBook", attribute.String("isbn", req.ISBN))
	defer func() { l.finish(span, "add_book", start, err) }()

	if err := book.ValidateNew(req.ISBN, req.TotalCopies); err != nil {
		return nil, err
	}

	l.mu.Lock()
	b, c, err := l.addBookLocked(ctx, req)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, c)
	return b, nil
}

func (l *Library) addBookLocked(ctx context.Context, req AddBookRequest) (*book.Book, commit, error) {
	// 1. 内存中已存在
	if _, ok := l.books[req.ISBN]; ok {
		return nil, commit{}, book.ErrISBNDuplicate
	}

	// 2. 写存储；存储报重复键（其他写入者抢先）时不建内存条目
	b := book.NewBook(req.ISBN, req.Title, req.Author, req.Publisher, req.PublicationYear, req.TotalCopies)
	b.CreatedAt = l.now()

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()
	if err := l.bookRepo.Create(sctx, b); err != nil {
		if errors.Is(err, book.ErrISBNDuplicate) {
			return nil, commit{}, book.ErrISBNDuplicate
		}
		l.logger.Error("book not stored", "isbn", req.ISBN, "error", err)
		return nil, commit{}, storeFailure("failed to add book", err)
	}

	// 3. 提交到内存
	l.books[b.ISBN] = b
	l.logger.Info("book added", "isbn", b.ISBN, "title", b.Title, "copies", b.TotalCopies)
	return b.Clone(), l.commitLocked(b.ISBN), nil
}

// SearchBooks 按书名或作者子串检索
// 存储返回但内存中不存在的ISBN直接丢弃
func (l *Library) SearchBooks(ctx context.Context, query string) (_ []*book.Book, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.SearchBooks", attribute.String("query", query))
	defer func() { l.finish(span, "search_books", start, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()
	rows, err := l.bookRepo.Search(sctx, query)
	if err != nil {
		return nil, storeFailure("failed to search books", err)
	}

	result := make([]*book.Book, 0, len(rows))
	for _, row := range rows {
		b, ok := l.books[row.ISBN]
		if !ok {
			l.logger.Warn("search result not in memory", "isbn", row.ISBN)
			continue
		}
		result = append(result, b.Clone())
	}
	return result, nil
}

// GetBook 按ISBN读取内存中的图书
func (l *Library) GetBook(isbn string) (*book.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b.Clone(), nil
}

// ListBooks 全部图书，按ISBN排序
func (l *Library) ListBooks() []*book.Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	books := make([]*book.Book, 0, len(l.books))
	for _, b := range l.books {
		books = append(books, b.Clone())
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ISBN < books[j].ISBN })
	return books
}
