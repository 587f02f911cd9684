package member

import (
	"sort"
	"time"
)

// Member 会员实体(聚合根)
// DDD设计说明:
// 1. MemberID是业务唯一标识(由调用方分配)
// 2. borrowed是会员当前持有的ISBN集合,同一ISBN只出现一次
// 3. 罚款使用int64存储"分"为单位(避免浮点数精度问题),TotalFines始终>=0
type Member struct {
	MemberID       string
	Name           string
	Email          string
	Phone          string
	Address        string
	MembershipDate time.Time
	IsActive       bool
	TotalFines     int64 // 累计未缴罚款(分)

	borrowed map[string]struct{}
}

// NewMember 创建新会员(工厂方法)
// 新会员默认启用,无借阅、无罚款
func NewMember(memberID, name, email, phone, address string) *Member {
	return &Member{
		MemberID:       memberID,
		Name:           name,
		Email:          email,
		Phone:          phone,
		Address:        address,
		MembershipDate: time.Now(),
		IsActive:       true,
		borrowed:       make(map[string]struct{}),
	}
}

// AddBorrowedBook 记录会员持有某本书(幂等)
func (m *Member) AddBorrowedBook(isbn string) {
	if m.borrowed == nil {
		m.borrowed = make(map[string]struct{})
	}
	m.borrowed[isbn] = struct{}{}
}

// RemoveBorrowedBook 移除持有记录
// 返回false表示会员并未持有该书
func (m *Member) RemoveBorrowedBook(isbn string) bool {
	if _, ok := m.borrowed[isbn]; !ok {
		return false
	}
	delete(m.borrowed, isbn)
	return true
}

// HasBorrowed 会员当前是否持有该书
func (m *Member) HasBorrowed(isbn string) bool {
	_, ok := m.borrowed[isbn]
	return ok
}

// BorrowedBooks 当前持有的ISBN列表(按字典序)
func (m *Member) BorrowedBooks() []string {
	isbns := make([]string, 0, len(m.borrowed))
	for isbn := range m.borrowed {
		isbns = append(isbns, isbn)
	}
	sort.Strings(isbns)
	return isbns
}

// BorrowedCount 当前持有数量
func (m *Member) BorrowedCount() int {
	return len(m.borrowed)
}

// AddFine 增加罚款
// amount应为非负数,负数属于调用方错误,这里直接忽略
func (m *Member) AddFine(amount int64) {
	if amount <= 0 {
		return
	}
	m.TotalFines += amount
}

// PayFine 缴纳罚款
// 业务规则:缴纳金额必须>0且不能超过当前欠款
func (m *Member) PayFine(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > m.TotalFines {
		return ErrFineOverpayment
	}
	m.TotalFines -= amount
	return nil
}

// Activate 启用会员
func (m *Member) Activate() {
	m.IsActive = true
}

// Deactivate 停用会员(停用后不能借书,但仍可还书)
func (m *Member) Deactivate() {
	m.IsActive = false
}

// Clone 深拷贝,供调用方只读使用
func (m *Member) Clone() *Member {
	c := *m
	c.borrowed = make(map[string]struct{}, len(m.borrowed))
	for isbn := range m.borrowed {
		c.borrowed[isbn] = struct{}{}
	}
	return &c
}
