package dto

import (
	"github.com/xiebiao/library/internal/domain/book"
)

const timeLayout = "2006-01-02 15:04:05"

// AddBookRequest HTTP上架请求
type AddBookRequest struct {
	ISBN            string `json:"isbn" binding:"required,max=20" example:"9780134190440"`
	Title           string `json:"title" binding:"required,max=200" example:"The Go Programming Language"`
	Author          string `json:"author" binding:"required,max=100" example:"Alan Donovan"`
	Publisher       string `json:"publisher" binding:"max=100" example:"Addison-Wesley"`
	PublicationYear int    `json:"publication_year" binding:"min=0,max=9999" example:"2015"`
	TotalCopies     int    `json:"total_copies" binding:"min=0" example:"3"`
}

// SearchBooksRequest 检索参数，q为空时返回全部图书
type SearchBooksRequest struct {
	Query string `form:"q" binding:"max=100" example:"Go"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ISBN            string            `json:"isbn" example:"9780134190440"`
	Title           string            `json:"title" example:"The Go Programming Language"`
	Author          string            `json:"author" example:"Alan Donovan"`
	Publisher       string            `json:"publisher" example:"Addison-Wesley"`
	PublicationYear int               `json:"publication_year" example:"2015"`
	Availability    book.Availability `json:"availability"`
	CreatedAt       string            `json:"created_at" example:"2024-01-15 10:30:00"`
}

// NewBookResponse 领域实体 → 响应
func NewBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Availability:    b.Availability(),
		CreatedAt:       b.CreatedAt.Format(timeLayout),
	}
}

// NewBookList 列表转换
func NewBookList(books []*book.Book) []*BookResponse {
	list := make([]*BookResponse, len(books))
	for i, b := range books {
		list[i] = NewBookResponse(b)
	}
	return list
}
