package library

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// commit 一次已提交写操作需要同步到旁路的数据，在锁内采集
type commit struct {
	isbn   string
	avail  *book.Availability
	stats  Stats
	events []loan.Event
}

func (l *Library) commitLocked(isbn string, events ...loan.Event) commit {
	c := commit{isbn: isbn, stats: l.statsLocked(), events: events}
	if b, ok := l.books[isbn]; ok {
		a := b.Availability()
		c.avail = &a
	}
	return c
}

// afterCommit 推送快照并发布事件
// 在锁外执行，任何失败只记录日志
func (l *Library) afterCommit(ctx context.Context, c commit) {
	metrics.SetGauge(metrics.CopiesOnLoan, float64(c.stats.BorrowedBooks))

	// 请求已结束也要把旁路动作做完
	ctx = context.WithoutCancel(ctx)

	if l.cache != nil {
		if c.avail != nil {
			if err := l.cache.PutAvailability(ctx, c.isbn, *c.avail); err != nil {
				l.logger.Warn("availability snapshot not cached", "isbn", c.isbn, "error", err)
			}
		}
		if err := l.cache.PutStats(ctx, c.stats); err != nil {
			l.logger.Warn("stats snapshot not cached", "error", err)
		}
	}

	if l.events != nil {
		for _, ev := range c.events {
			if err := l.events.Publish(ctx, ev); err != nil {
				l.logger.Warn("loan event not published",
					"type", ev.Type, "member_id", ev.MemberID, "isbn", ev.ISBN, "error", err)
			}
		}
	}
}

// finish 结束Span并记录操作指标，result取错误类别
func (l *Library) finish(span trace.Span, operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = apperrors.KindOf(err).String()
	}
	metrics.ObserveOperation(operation, result, start)
	tracing.EndSpan(span, err)
}
