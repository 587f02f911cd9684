package library

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// AddMemberRequest 办证参数
type AddMemberRequest struct {
	MemberID string
	Name     string
	Email    string
	Phone    string
	Address  string
}

// AddMember 登记新会员，提交规则同AddBook
func (l *Library) AddMember(ctx context.Context, req AddMemberRequest) (_ *member.Member, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.AddMember", attribute.String("member_id", req.MemberID))
	defer func() { l.finish(span, "add_member", start, err) }()

	if strings.TrimSpace(req.MemberID) == "" {
		return nil, member.ErrInvalidMemberID
	}

	l.mu.Lock()
	m, c, err := l.addMemberLocked(ctx, req)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, c)
	return m, nil
}

func (l *Library) addMemberLocked(ctx context.Context, req AddMemberRequest) (*member.Member, commit, error) {
	if _, ok := l.members[req.MemberID]; ok {
		return nil, commit{}, member.ErrMemberDuplicate
	}

	m := member.NewMember(req.MemberID, req.Name, req.Email, req.Phone, req.Address)
	m.MembershipDate = l.now()

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()
	if err := l.memberRepo.Create(sctx, m); err != nil {
		if errors.Is(err, member.ErrMemberDuplicate) {
			return nil, commit{}, member.ErrMemberDuplicate
		}
		l.logger.Error("member not stored", "member_id", req.MemberID, "error", err)
		return nil, commit{}, storeFailure("failed to add member", err)
	}

	l.members[m.MemberID] = m
	l.logger.Info("member added", "member_id", m.MemberID, "name", m.Name)
	return m.Clone(), l.commitLocked(""), nil
}

// SetMemberActive 启用/停用会员，先写存储再改内存
func (l *Library) SetMemberActive(ctx context.Context, memberID string, active bool) (err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.SetMemberActive",
		attribute.String("member_id", memberID), attribute.Bool("active", active))
	defer func() { l.finish(span, "set_member_active", start, err) }()

	l.mu.Lock()
	c, err := l.setMemberActiveLocked(ctx, memberID, active)
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.afterCommit(ctx, c)
	return nil
}

func (l *Library) setMemberActiveLocked(ctx context.Context, memberID string, active bool) (commit, error) {
	m, ok := l.members[memberID]
	if !ok {
		return commit{}, member.ErrMemberNotFound
	}

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()
	if err := l.memberRepo.UpdateStatus(sctx, memberID, active); err != nil {
		return commit{}, storeFailure("failed to update member status", err)
	}

	if active {
		m.Activate()
	} else {
		m.Deactivate()
	}
	l.logger.Info("member status changed", "member_id", memberID, "active", active)
	return l.commitLocked(""), nil
}

// PayFine 缴纳罚款
//
//  1. 金额必须为正
//  2. 先在内存中检查不超过欠款，超过直接失败
//  3. 存储按差额更新（存储侧同样保证total_fines不为负）
//  4. 存储成功后扣减内存欠款
func (l *Library) PayFine(ctx context.Context, memberID string, amount int64) (_ int64, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.PayFine",
		attribute.String("member_id", memberID), attribute.Int64("amount", amount))
	defer func() { l.finish(span, "pay_fine", start, err) }()

	l.mu.Lock()
	remaining, c, err := l.payFineLocked(ctx, memberID, amount)
	l.mu.Unlock()
	if err != nil {
		return 0, err
	}

	metrics.AddCounter(metrics.FinesCollectedCents, float64(amount))
	l.afterCommit(ctx, c)
	return remaining, nil
}

func (l *Library) payFineLocked(ctx context.Context, memberID string, amount int64) (int64, commit, error) {
	m, ok := l.members[memberID]
	if !ok {
		return 0, commit{}, member.ErrMemberNotFound
	}
	if amount <= 0 {
		return 0, commit{}, member.ErrInvalidAmount
	}
	if amount > m.TotalFines {
		return 0, commit{}, member.ErrFineOverpayment
	}

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()
	if err := l.memberRepo.AddFines(sctx, memberID, -amount); err != nil {
		if errors.Is(err, member.ErrFineOverpayment) {
			return 0, commit{}, member.ErrFineOverpayment
		}
		l.logger.Error("fine payment not stored", "member_id", memberID, "amount", amount, "error", err)
		return 0, commit{}, storeFailure("failed to record fine payment", err)
	}

	if err := m.PayFine(amount); err != nil {
		return 0, commit{}, err
	}
	l.logger.Info("fine paid", "member_id", memberID, "amount", loan.FormatAmount(amount),
		"remaining", loan.FormatAmount(m.TotalFines))

	ev := loan.Event{Type: loan.EventFinePaid, MemberID: memberID, Amount: amount, OccurredAt: l.now()}
	return m.TotalFines, l.commitLocked("", ev), nil
}

// GetMember 按会员ID读取内存中的会员
func (l *Library) GetMember(memberID string) (*member.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.members[memberID]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	return m.Clone(), nil
}

// ListMembers 全部会员，按会员ID排序
func (l *Library) ListMembers() []*member.Member {
	l.mu.Lock()
	defer l.mu.Unlock()

	members := make([]*member.Member, 0, len(l.members))
	for _, m := range l.members {
		members = append(members, m.Clone())
	}
	sort.Slice(members, func(i, j int) bool { return members[i].MemberID < members[j].MemberID })
	return members
}

// MemberLoans 会员借阅历史（读存储，最新在前）
func (l *Library) MemberLoans(ctx context.Context, memberID string) (_ []*loan.Record, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Library.MemberLoans", attribute.String("member_id", memberID))
	defer func() { l.finish(span, "member_loans", start, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.members[memberID]; !ok {
		return nil, member.ErrMemberNotFound
	}

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()
	records, err := l.loanRepo.ListByMember(sctx, memberID)
	if err != nil {
		return nil, storeFailure("failed to list member loans", err)
	}
	return records, nil
}
