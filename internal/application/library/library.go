// Package library 图书馆核心
//
// Library在内存中持有ISBN→Book与会员ID→Member两个索引，启动时从存储全量加载，
// 之后每个写操作都遵循同一提交规则：
//
//  1. 先校验内存状态（不存在、停用、无副本等直接失败，不做任何修改）
//  2. 再写存储
//  3. 存储成功后才修改内存；借书的内存预占在存储失败时按逆序补偿
//
// 提交后的旁路动作（可借快照写缓存、发布借还事件）尽力而为：失败只记录日志，
// 不改变操作结果，也不回滚。
package library

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

const tracerName = "library"

// AvailabilityCache 可借数量快照缓存
type AvailabilityCache interface {
	PutAvailability(ctx context.Context, isbn string, a book.Availability) error
	PutStats(ctx context.Context, s Stats) error
}

// EventPublisher 借还事件发布
type EventPublisher interface {
	Publish(ctx context.Context, ev loan.Event) error
}

// Library 图书馆核心
// 所有操作（包括只读操作）在同一把互斥锁下执行，
// 保证"检查→预占→写存储→失败补偿"序列不被并发请求交错。
type Library struct {
	mu      sync.Mutex
	books   map[string]*book.Book
	members map[string]*member.Member

	bookRepo   book.Repository
	memberRepo member.Repository
	loanRepo   loan.Repository

	cache        AvailabilityCache
	events       EventPublisher
	now          func() time.Time
	logger       *slog.Logger
	storeTimeout time.Duration
}

// Option 可选配置
type Option func(*Library)

// WithClock 注入时钟（测试中回拨借书时间）
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithCache 设置可借快照缓存
func WithCache(c AvailabilityCache) Option {
	return func(l *Library) { l.cache = c }
}

// WithPublisher 设置事件发布者
func WithPublisher(p EventPublisher) Option {
	return func(l *Library) { l.events = p }
}

// WithLogger 设置日志
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithStoreTimeout 单次存储调用超时，<=0表示不限制
// 超时按存储失败处理（借书会触发补偿）
func WithStoreTimeout(d time.Duration) Option {
	return func(l *Library) { l.storeTimeout = d }
}

// New 创建Library，调用方随后应调用Load加载存储中的数据
func New(bookRepo book.Repository, memberRepo member.Repository, loanRepo loan.Repository, opts ...Option) *Library {
	l := &Library{
		books:      make(map[string]*book.Book),
		members:    make(map[string]*member.Member),
		bookRepo:   bookRepo,
		memberRepo: memberRepo,
		loanRepo:   loanRepo,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load 全量加载图书和会员，并用未归还记录重建每个会员的在借集合
// 加载失败时内存索引保持调用前的状态
func (l *Library) Load(ctx context.Context) (err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.Load")
	defer func() { l.finish(span, "load", start, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	books, err := l.bookRepo.FindAll(sctx)
	if err != nil {
		return storeFailure("failed to load books", err)
	}
	members, err := l.memberRepo.FindAll(sctx)
	if err != nil {
		return storeFailure("failed to load members", err)
	}
	open, err := l.loanRepo.ListOpen(sctx)
	if err != nil {
		return storeFailure("failed to load open loans", err)
	}

	bookIndex := make(map[string]*book.Book, len(books))
	for _, b := range books {
		bookIndex[b.ISBN] = b
	}
	memberIndex := make(map[string]*member.Member, len(members))
	for _, m := range members {
		memberIndex[m.MemberID] = m
	}
	for _, rec := range open {
		m, ok := memberIndex[rec.MemberID]
		if !ok {
			l.logger.Warn("open loan references unknown member", "member_id", rec.MemberID, "isbn", rec.ISBN)
			continue
		}
		m.AddBorrowedBook(rec.ISBN)
	}

	l.books = bookIndex
	l.members = memberIndex

	stats := l.statsLocked()
	metrics.SetGauge(metrics.CopiesOnLoan, float64(stats.BorrowedBooks))
	l.logger.Info("library loaded",
		"books", len(bookIndex),
		"members", len(memberIndex),
		"open_loans", len(open),
	)
	return nil
}

// storeCtx 为存储调用派生带超时的ctx
func (l *Library) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.storeTimeout)
}

// storeFailure 非业务错误统一包装为存储失败
func storeFailure(message string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, message, err)
}
