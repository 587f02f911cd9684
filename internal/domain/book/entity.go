package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 一个ISBN对应一个书目,TotalCopies是馆藏副本总数
// 2. AvailableCopies是当前在架可借副本数,始终满足 0 <= AvailableCopies <= TotalCopies
// 3. 副本数只能通过BorrowCopy/ReturnCopy变更,调用方不直接改字段
type Book struct {
	ISBN            string // ISBN号(国际标准书号)
	Title           string // 书名
	Author          string // 作者
	Publisher       string // 出版社
	PublicationYear int    // 出版年份
	TotalCopies     int    // 馆藏副本总数
	AvailableCopies int    // 在架可借副本数
	CreatedAt       time.Time
}

// Availability 副本可借情况快照
type Availability struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Borrowed  int `json:"borrowed"`
}

// NewBook 创建新图书(工厂方法)
// 新入库的图书所有副本都在架: AvailableCopies = totalCopies
func NewBook(isbn, title, author, publisher string, year, totalCopies int) *Book {
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Publisher:       publisher,
		PublicationYear: year,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CreatedAt:       time.Now(),
	}
}

// BorrowCopy 借出一个副本(领域行为)
// 业务规则:没有在架副本时失败,且不修改任何状态
func (b *Book) BorrowCopy() error {
	if b.AvailableCopies <= 0 {
		return ErrNoCopiesAvailable
	}
	b.AvailableCopies--
	return nil
}

// ReturnCopy 归还一个副本(领域行为)
// 业务规则:副本已全部在架时拒绝,防止重复归还
func (b *Book) ReturnCopy() error {
	if b.AvailableCopies >= b.TotalCopies {
		return ErrOverReturn
	}
	b.AvailableCopies++
	return nil
}

// Availability 返回副本可借情况(只读)
func (b *Book) Availability() Availability {
	return Availability{
		Total:     b.TotalCopies,
		Available: b.AvailableCopies,
		Borrowed:  b.TotalCopies - b.AvailableCopies,
	}
}

// Clone 返回副本,供调用方只读使用
func (b *Book) Clone() *Book {
	c := *b
	return &c
}
