package library

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
)

var errDisk = errors.New("disk I/O error")

// ========== 图书仓储 ==========

type fakeBookRepo struct {
	mu        sync.Mutex
	books     map[string]*book.Book
	createErr error
	searchErr error
	extra     []*book.Book // Search额外返回的行（模拟存储有、内存无）
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[string]*book.Book)}
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.books[b.ISBN]; ok {
		return book.ErrISBNDuplicate
	}
	r.books[b.ISBN] = b.Clone()
	return nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b.Clone(), nil
}

func (r *fakeBookRepo) FindAll(ctx context.Context) ([]*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*book.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (r *fakeBookRepo) Search(ctx context.Context, query string) ([]*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	var out []*book.Book
	for _, b := range r.books {
		if strings.Contains(b.Title, query) || strings.Contains(b.Author, query) {
			out = append(out, b.Clone())
		}
	}
	out = append(out, r.extra...)
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// ========== 会员仓储 ==========

type fakeMemberRepo struct {
	mu         sync.Mutex
	members    map[string]*member.Member
	createErr  error
	finesErr   error
	statusErr  error
	finesCalls []int64
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*member.Member)}
}

func (r *fakeMemberRepo) Create(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.members[m.MemberID]; ok {
		return member.ErrMemberDuplicate
	}
	r.members[m.MemberID] = m.Clone()
	return nil
}

func (r *fakeMemberRepo) FindByID(ctx context.Context, id string) (*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	return m.Clone(), nil
}

func (r *fakeMemberRepo) FindAll(ctx context.Context) ([]*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*member.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (r *fakeMemberRepo) AddFines(ctx context.Context, id string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finesErr != nil {
		return r.finesErr
	}
	m, ok := r.members[id]
	if !ok {
		return member.ErrMemberNotFound
	}
	if m.TotalFines+delta < 0 {
		return member.ErrFineOverpayment
	}
	m.TotalFines += delta
	r.finesCalls = append(r.finesCalls, delta)
	return nil
}

func (r *fakeMemberRepo) UpdateStatus(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusErr != nil {
		return r.statusErr
	}
	m, ok := r.members[id]
	if !ok {
		return member.ErrMemberNotFound
	}
	m.IsActive = active
	return nil
}

// ========== 借阅记录仓储 ==========

type fakeLoanRepo struct {
	mu       sync.Mutex
	records  []*loan.Record
	nextID   uint
	openErr  error
	findErr  error
	closeErr error
}

func (r *fakeLoanRepo) Open(ctx context.Context, rec *loan.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openErr != nil {
		return r.openErr
	}
	r.nextID++
	rec.ID = r.nextID
	c := *rec
	r.records = append(r.records, &c)
	return nil
}

func (r *fakeLoanRepo) findOpenLocked(memberID, isbn string) *loan.Record {
	var latest *loan.Record
	for _, rec := range r.records {
		if rec.MemberID == memberID && rec.ISBN == isbn && rec.IsOpen() {
			if latest == nil || !rec.BorrowDate.Before(latest.BorrowDate) {
				latest = rec
			}
		}
	}
	return latest
}

func (r *fakeLoanRepo) FindOpen(ctx context.Context, memberID, isbn string) (*loan.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	rec := r.findOpenLocked(memberID, isbn)
	if rec == nil {
		return nil, loan.ErrOpenLoanNotFound
	}
	c := *rec
	return &c, nil
}

func (r *fakeLoanRepo) Close(ctx context.Context, memberID, isbn string, fine int64, returnedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closeErr != nil {
		return r.closeErr
	}
	rec := r.findOpenLocked(memberID, isbn)
	if rec == nil {
		return loan.ErrOpenLoanNotFound
	}
	rec.ReturnDate = &returnedAt
	rec.FinePaid = fine
	return nil
}

func (r *fakeLoanRepo) ListOpen(ctx context.Context) ([]*loan.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*loan.Record
	for _, rec := range r.records {
		if rec.IsOpen() {
			c := *rec
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListByMember(ctx context.Context, memberID string) ([]*loan.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*loan.Record
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].MemberID == memberID {
			c := *r.records[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// ========== 旁路 ==========

type fakeCache struct {
	mu    sync.Mutex
	avail map[string]book.Availability
	stats []Stats
	err   error
}

func (c *fakeCache) PutAvailability(ctx context.Context, isbn string, a book.Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.avail == nil {
		c.avail = make(map[string]book.Availability)
	}
	c.avail[isbn] = a
	return nil
}

func (c *fakeCache) PutStats(ctx context.Context, s Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.stats = append(c.stats, s)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []loan.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, ev loan.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) types() []loan.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]loan.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// ========== 组装 ==========

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	lib       *Library
	books     *fakeBookRepo
	members   *fakeMemberRepo
	loans     *fakeLoanRepo
	cache     *fakeCache
	publisher *fakePublisher
	clock     *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		books:     newFakeBookRepo(),
		members:   newFakeMemberRepo(),
		loans:     &fakeLoanRepo{},
		cache:     &fakeCache{},
		publisher: &fakePublisher{},
		clock:     &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	f.lib = New(f.books, f.members, f.loans,
		WithClock(f.clock.now),
		WithCache(f.cache),
		WithPublisher(f.publisher),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithStoreTimeout(time.Second),
	)
	return f
}
