package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// LoanHandler 借还书接口
type LoanHandler struct {
	lib *library.Library
}

// NewLoanHandler 创建借还书处理器
func NewLoanHandler(lib *library.Library) *LoanHandler {
	return &LoanHandler{lib: lib}
}

// Borrow 借书
// @Summary 借书（借期14天）
// @Tags 借还
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LoanRequest true "会员与ISBN"
// @Success 200 {object} response.Response{data=dto.BorrowResponse}
// @Router /api/v1/loans [post]
func (h *LoanHandler) Borrow(c *gin.Context) {
	var req dto.LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return
	}

	res, err := h.lib.BorrowBook(c.Request.Context(), req.MemberID, req.ISBN)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, res.Message, &dto.BorrowResponse{
		DueDate: res.DueDate.Format("2006-01-02"),
	})
}

// Return 还书
// @Summary 还书并结算逾期罚款
// @Tags 借还
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LoanRequest true "会员与ISBN"
// @Success 200 {object} response.Response{data=dto.ReturnResponse}
// @Router /api/v1/loans/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	var req dto.LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return
	}

	res, err := h.lib.ReturnBook(c.Request.Context(), req.MemberID, req.ISBN)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, res.Message, &dto.ReturnResponse{
		Fine:        res.Fine,
		FineDisplay: loan.FormatAmount(res.Fine),
	})
}

// Stats 馆藏统计
// @Summary 馆藏与会员统计
// @Tags 统计
// @Produce json
// @Success 200 {object} response.Response{data=library.Stats}
// @Router /api/v1/stats [get]
func (h *LoanHandler) Stats(c *gin.Context) {
	response.Success(c, h.lib.Stats())
}
