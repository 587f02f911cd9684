package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/interface/http/dto"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书接口
type BookHandler struct {
	lib *library.Library
}

// NewBookHandler 创建图书处理器
func NewBookHandler(lib *library.Library) *BookHandler {
	return &BookHandler{lib: lib}
}

// AddBook 上架
// @Summary 上架新书
// @Tags 图书
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddBookRequest true "图书信息"
// @Success 200 {object} response.Response{data=dto.BookResponse}
// @Router /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return
	}

	b, err := h.lib.AddBook(c.Request.Context(), library.AddBookRequest{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.NewBookResponse(b))
}

// ListBooks 检索或列出图书
// @Summary 图书列表/检索（书名或作者子串）
// @Tags 图书
// @Produce json
// @Param q query string false "检索词"
// @Success 200 {object} response.Response{data=[]dto.BookResponse}
// @Router /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return
	}

	if req.Query == "" {
		response.Success(c, dto.NewBookList(h.lib.ListBooks()))
		return
	}

	books, err := h.lib.SearchBooks(c.Request.Context(), req.Query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookList(books))
}

// GetBook 图书详情
// @Summary 图书详情与可借数量
// @Tags 图书
// @Produce json
// @Param isbn path string true "ISBN"
// @Success 200 {object} response.Response{data=dto.BookResponse}
// @Router /api/v1/books/{isbn} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	b, err := h.lib.GetBook(c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(b))
}
