package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/saga"
	"github.com/xiebiao/library/pkg/tracing"
)

const (
	stepReserveCopy = "reserve copy"
	stepMarkMember  = "mark member"
	stepRecordLoan  = "record loan"
)

// BorrowResult 借书结果
type BorrowResult struct {
	DueDate time.Time
	Message string
}

// ReturnResult 还书结果
type ReturnResult struct {
	Fine    int64 // 本次结算的罚款(分)
	Message string
}

// BorrowBook 借书
//
// 前置检查依次为：会员存在、图书存在、会员启用、会员未持有同一本书。
// 之后按Saga执行：
//
//	reserve copy  内存可借副本-1        补偿：副本+1
//	mark member   ISBN加入会员在借集合  补偿：移出集合
//	record loan   写入未归还借阅记录
//
// 写存储失败时逆序执行补偿，内存恢复到借书前的状态。
func (l *Library) BorrowBook(ctx context.Context, memberID, isbn string) (_ *BorrowResult, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.BorrowBook",
		attribute.String("member_id", memberID), attribute.String("isbn", isbn))
	defer func() { l.finish(span, "borrow", start, err) }()

	l.mu.Lock()
	res, c, err := l.borrowLocked(ctx, memberID, isbn)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, c)
	return res, nil
}

func (l *Library) borrowLocked(ctx context.Context, memberID, isbn string) (*BorrowResult, commit, error) {
	m, ok := l.members[memberID]
	if !ok {
		return nil, commit{}, member.ErrMemberNotFound
	}
	b, ok := l.books[isbn]
	if !ok {
		return nil, commit{}, book.ErrBookNotFound
	}
	if !m.IsActive {
		return nil, commit{}, member.ErrMemberInactive
	}
	if m.HasBorrowed(isbn) {
		return nil, commit{}, member.ErrAlreadyBorrowed
	}

	borrowedAt := l.now()
	rec := loan.NewRecord(memberID, isbn, borrowedAt)

	s := saga.NewSaga(0,
		saga.WithLogger(l.logger),
		saga.OnCompensate(func(step string, err error) {
			metrics.IncCounterVec(metrics.SagaCompensationsTotal, map[string]string{"step": step})
		}),
	)
	s.AddStep(stepReserveCopy,
		func(ctx context.Context) error { return b.BorrowCopy() },
		func(ctx context.Context) error { return b.ReturnCopy() },
	)
	s.AddStep(stepMarkMember,
		func(ctx context.Context) error { m.AddBorrowedBook(isbn); return nil },
		func(ctx context.Context) error { m.RemoveBorrowedBook(isbn); return nil },
	)
	s.AddStep(stepRecordLoan,
		func(ctx context.Context) error {
			sctx, cancel := l.storeCtx(ctx)
			defer cancel()
			return l.loanRepo.Open(sctx, rec)
		},
		nil,
	)

	if err := s.Execute(ctx); err != nil {
		if saga.FailedStep(err) == stepReserveCopy {
			return nil, commit{}, book.ErrNoCopiesAvailable
		}
		metrics.IncCounter(metrics.BorrowRollbacksTotal)
		l.logger.Warn("borrowing not recorded, rolled back",
			"member_id", memberID, "isbn", isbn, "compensated", s.Compensated(), "error", err)
		return nil, commit{}, apperrors.WrapCode(apperrors.ErrCodeBorrowNotStored, loan.ErrBorrowNotRecorded.Message, err)
	}

	l.logger.Info("book borrowed", "member_id", memberID, "isbn", isbn,
		"due_date", rec.DueDate.Format(time.DateOnly), "record_id", rec.ID)

	ev := loan.Event{
		Type:       loan.EventBorrowed,
		MemberID:   memberID,
		ISBN:       isbn,
		DueDate:    rec.DueDate,
		OccurredAt: borrowedAt,
	}
	return &BorrowResult{
		DueDate: rec.DueDate,
		Message: fmt.Sprintf("Book '%s' borrowed successfully. Due date: %s", b.Title, rec.DueDate.Format(time.DateOnly)),
	}, l.commitLocked(isbn, ev), nil
}

// ReturnBook 还书
//
//  1. 会员、图书存在；会员在借集合中移除ISBN失败即"未借阅"
//  2. 内存可借副本+1
//  3. 按最近一条未归还记录计算罚款，大于0则计入会员欠款
//  4. 写存储
//
// 第4步失败时不回滚前面的内存修改，内存与存储此时不一致，
// 由return_divergences_total计数并记录错误日志。
func (l *Library) ReturnBook(ctx context.Context, memberID, isbn string) (_ *ReturnResult, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.ReturnBook",
		attribute.String("member_id", memberID), attribute.String("isbn", isbn))
	defer func() { l.finish(span, "return", start, err) }()

	l.mu.Lock()
	res, c, err := l.returnLocked(ctx, memberID, isbn)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, c)
	return res, nil
}

func (l *Library) returnLocked(ctx context.Context, memberID, isbn string) (*ReturnResult, commit, error) {
	m, ok := l.members[memberID]
	if !ok {
		return nil, commit{}, member.ErrMemberNotFound
	}
	b, ok := l.books[isbn]
	if !ok {
		return nil, commit{}, book.ErrBookNotFound
	}
	if !m.RemoveBorrowedBook(isbn) {
		return nil, commit{}, member.ErrNotBorrowed
	}

	if err := b.ReturnCopy(); err != nil {
		// 在借集合与副本数不一致，副本数保持在上限
		l.logger.Warn("return exceeds total copies", "isbn", isbn, "error", err)
	}

	now := l.now()
	fine, err := l.calculateFine(ctx, memberID, isbn, now)
	if err != nil {
		l.diverged(memberID, isbn, err)
		return nil, commit{}, apperrors.WrapCode(apperrors.ErrCodeReturnNotStored, loan.ErrReturnNotRecorded.Message, err)
	}
	if fine > 0 {
		m.AddFine(fine)
		metrics.AddCounter(metrics.FinesAssessedCents, float64(fine))
	}

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()
	if err := l.loanRepo.Close(sctx, memberID, isbn, fine, now); err != nil {
		l.diverged(memberID, isbn, err)
		return nil, commit{}, apperrors.WrapCode(apperrors.ErrCodeReturnNotStored, loan.ErrReturnNotRecorded.Message, err)
	}

	l.logger.Info("book returned", "member_id", memberID, "isbn", isbn, "fine", loan.FormatAmount(fine))

	events := []loan.Event{{Type: loan.EventReturned, MemberID: memberID, ISBN: isbn, Amount: fine, OccurredAt: now}}
	message := fmt.Sprintf("Book '%s' returned successfully", b.Title)
	if fine > 0 {
		message += fmt.Sprintf(". Fine applied: $%s", loan.FormatAmount(fine))
		events = append(events, loan.Event{Type: loan.EventFined, MemberID: memberID, ISBN: isbn, Amount: fine, OccurredAt: now})
	}
	return &ReturnResult{Fine: fine, Message: message}, l.commitLocked(isbn, events...), nil
}

// calculateFine 最近一条未归还记录的逾期罚款，没有未归还记录时为0
func (l *Library) calculateFine(ctx context.Context, memberID, isbn string, now time.Time) (int64, error) {
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	rec, err := l.loanRepo.FindOpen(sctx, memberID, isbn)
	if err != nil {
		if errors.Is(err, loan.ErrOpenLoanNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return loan.CalculateFine(rec.DueDate, now), nil
}

func (l *Library) diverged(memberID, isbn string, err error) {
	metrics.IncCounter(metrics.ReturnDivergencesTotal)
	l.logger.Error("return not recorded, memory kept",
		"member_id", memberID, "isbn", isbn, "error", err)
}
