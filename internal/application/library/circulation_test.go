package library

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestBorrowBook_UntilNoCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 2)
	for _, id := range []string{"M1", "M2", "M3"} {
		addMember(t, f, id)
	}

	res, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	assert.Equal(t, f.clock.now().AddDate(0, 0, 14), res.DueDate)
	assert.Equal(t, "Book 'X' borrowed successfully. Due date: 2024-03-15", res.Message)
	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 1, b.AvailableCopies)

	_, err = f.lib.BorrowBook(ctx, "M2", "1111111111")
	require.NoError(t, err)
	b, _ = f.lib.GetBook("1111111111")
	assert.Equal(t, 0, b.AvailableCopies)

	_, err = f.lib.BorrowBook(ctx, "M3", "1111111111")
	require.Error(t, err)
	assert.ErrorIs(t, err, book.ErrNoCopiesAvailable)
	assert.Equal(t, "book not available", apperrors.GetAppError(err).Message)

	m3, _ := f.lib.GetMember("M3")
	assert.Zero(t, m3.BorrowedCount(), "failed borrow leaves member untouched")
	b, _ = f.lib.GetBook("1111111111")
	assert.Equal(t, 0, b.AvailableCopies)
	assert.Len(t, f.loans.records, 2)
}

func TestBorrowBook_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")
	addMember(t, f, "M2")
	require.NoError(t, f.lib.SetMemberActive(ctx, "M2", false))

	tests := []struct {
		name     string
		memberID string
		isbn     string
		want     error
		reason   string
	}{
		{"unknown member checked first", "nobody", "0000000000", member.ErrMemberNotFound, "member not found"},
		{"unknown book", "M1", "0000000000", book.ErrBookNotFound, "book not found"},
		{"inactive member", "M2", "1111111111", member.ErrMemberInactive, "member is not active"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lib.BorrowBook(ctx, tt.memberID, tt.isbn)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.reason, apperrors.GetAppError(err).Message)
		})
	}

	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Empty(t, f.loans.records)
}

func TestBorrowBook_AlreadyHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 3)
	addMember(t, f, "M1")

	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)

	_, err = f.lib.BorrowBook(ctx, "M1", "1111111111")
	assert.ErrorIs(t, err, member.ErrAlreadyBorrowed)
	assert.Equal(t, apperrors.KindPrecondition, apperrors.KindOf(err))

	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 2, b.AvailableCopies)
	assert.Len(t, f.loans.records, 1)
}

func TestBorrowBook_StoreFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 2)
	addMember(t, f, "M1")
	f.loans.openErr = errDisk
	eventsBefore := len(f.publisher.types())

	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.Error(t, err)
	assert.ErrorIs(t, err, loan.ErrBorrowNotRecorded)
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, "failed to record borrowing", apperrors.GetAppError(err).Message)
	assert.Equal(t, apperrors.KindStore, apperrors.KindOf(err))

	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 2, b.AvailableCopies, "copy released")
	m, _ := f.lib.GetMember("M1")
	assert.False(t, m.HasBorrowed("1111111111"), "member unmarked")
	assert.Len(t, f.publisher.types(), eventsBefore, "no event for a rolled back borrow")

	// 存储恢复后可以正常借出
	f.loans.openErr = nil
	_, err = f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
}

func TestBorrowBook_StoreTimeoutRollsBack(t *testing.T) {
	f := newFixture(t)
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")
	f.loans.openErr = context.DeadlineExceeded

	_, err := f.lib.BorrowBook(context.Background(), "M1", "1111111111")
	assert.ErrorIs(t, err, loan.ErrBorrowNotRecorded)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 1, b.AvailableCopies)
}

func TestReturnBook_Immediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 2)
	addMember(t, f, "M1")

	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)

	res, err := f.lib.ReturnBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	assert.Zero(t, res.Fine)
	assert.Equal(t, "Book 'X' returned successfully", res.Message)

	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 2, b.AvailableCopies)
	m, _ := f.lib.GetMember("M1")
	assert.Zero(t, m.BorrowedCount())
	assert.Zero(t, m.TotalFines)

	require.Len(t, f.loans.records, 1)
	assert.False(t, f.loans.records[0].IsOpen())
	assert.Equal(t, []loan.EventType{loan.EventBorrowed, loan.EventReturned}, f.publisher.types())
}

func TestReturnBook_OverdueFine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")

	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)

	// 到期后14天（外加不足一天的零头，按整天截断）
	f.clock.advance(loan.BorrowingPeriod + 14*24*time.Hour + 20*time.Hour)

	res, err := f.lib.ReturnBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	assert.Equal(t, 14*loan.DailyFine, res.Fine)
	assert.Equal(t, "Book 'X' returned successfully. Fine applied: $14.00", res.Message)

	m, _ := f.lib.GetMember("M1")
	assert.Equal(t, int64(1400), m.TotalFines)
	assert.Equal(t, int64(1400), f.loans.records[0].FinePaid)
	assert.Equal(t, []loan.EventType{loan.EventBorrowed, loan.EventReturned, loan.EventFined}, f.publisher.types())
}

func TestReturnBook_NotBorrowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 1)
	addBook(t, f, "2222222222", "Y", 1)
	addMember(t, f, "M1")
	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)

	_, err = f.lib.ReturnBook(ctx, "M1", "2222222222")
	assert.ErrorIs(t, err, member.ErrNotBorrowed)
	assert.Equal(t, "book was not borrowed by this member", apperrors.GetAppError(err).Message)

	b, _ := f.lib.GetBook("2222222222")
	assert.Equal(t, 1, b.AvailableCopies)
	m, _ := f.lib.GetMember("M1")
	assert.Equal(t, []string{"1111111111"}, m.BorrowedBooks())
	assert.Zero(t, m.TotalFines)
}

func TestReturnBook_NotFound(t *testing.T) {
	f := newFixture(t)
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")

	_, err := f.lib.ReturnBook(context.Background(), "nobody", "1111111111")
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
	_, err = f.lib.ReturnBook(context.Background(), "M1", "0000000000")
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

// 已知不一致：还书写存储失败时内存修改不回滚
func TestReturnBook_StoreFailureKeepsMemoryChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")
	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	f.clock.advance(loan.BorrowingPeriod + 3*24*time.Hour)
	f.loans.closeErr = errDisk

	_, err = f.lib.ReturnBook(ctx, "M1", "1111111111")
	require.Error(t, err)
	assert.ErrorIs(t, err, loan.ErrReturnNotRecorded)
	assert.Equal(t, "failed to record return", apperrors.GetAppError(err).Message)

	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 1, b.AvailableCopies, "copy stays returned in memory")
	m, _ := f.lib.GetMember("M1")
	assert.False(t, m.HasBorrowed("1111111111"), "member stays unmarked in memory")
	assert.Equal(t, int64(300), m.TotalFines, "fine stays applied in memory")
	assert.True(t, f.loans.records[0].IsOpen(), "store still holds the open record")
}

func TestReturnBook_FineLookupFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")
	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	f.loans.findErr = errDisk

	_, err = f.lib.ReturnBook(ctx, "M1", "1111111111")
	assert.ErrorIs(t, err, loan.ErrReturnNotRecorded)
	assert.True(t, f.loans.records[0].IsOpen())
}

func TestReturnBook_ThenBorrowAgainCreatesNewRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")

	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	_, err = f.lib.ReturnBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	f.clock.advance(time.Hour)
	_, err = f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)

	records, err := f.lib.MemberLoans(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].IsOpen(), "newest first")
	assert.False(t, records[1].IsOpen())
	assert.NotEqual(t, records[0].ID, records[1].ID)

	_, err = f.lib.MemberLoans(ctx, "nobody")
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

func TestSideEffectFailuresDoNotChangeOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 1)
	addMember(t, f, "M1")
	f.cache.err = errors.New("redis down")
	f.publisher.err = errors.New("broker down")

	_, err := f.lib.BorrowBook(ctx, "M1", "1111111111")
	require.NoError(t, err)
	_, err = f.lib.ReturnBook(ctx, "M1", "1111111111")
	require.NoError(t, err)

	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 1, b.AvailableCopies)
}

func TestBorrowBook_ConcurrentCallersRespectCopyCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addBook(t, f, "1111111111", "X", 3)
	members := []string{"M0", "M1", "M2", "M3", "M4", "M5", "M6", "M7", "M8", "M9"}
	for _, id := range members {
		addMember(t, f, id)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for _, id := range members {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.lib.BorrowBook(ctx, id, "1111111111"); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, book.ErrNoCopiesAvailable)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	b, _ := f.lib.GetBook("1111111111")
	assert.Equal(t, 0, b.AvailableCopies)
	assert.Len(t, f.loans.records, 3)
}
