package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// MemberHandler 会员接口
type MemberHandler struct {
	lib *library.Library
}

// NewMemberHandler 创建会员处理器
func NewMemberHandler(lib *library.Library) *MemberHandler {
	return &MemberHandler{lib: lib}
}

// AddMember 办证
// @Summary 登记会员
// @Tags 会员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddMemberRequest true "会员信息"
// @Success 200 {object} response.Response{data=dto.MemberResponse}
// @Router /api/v1/members [post]
func (h *MemberHandler) AddMember(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return
	}

	m, err := h.lib.AddMember(c.Request.Context(), library.AddMemberRequest{
		MemberID: req.MemberID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.NewMemberResponse(m))
}

// GetMember 会员详情
// @Summary 会员详情（在借图书、欠款）
// @Tags 会员
// @Produce json
// @Param id path string true "会员ID"
// @Success 200 {object} response.Response{data=dto.MemberResponse}
// @Router /api/v1/members/{id} [get]
func (h *MemberHandler) GetMember(c *gin.Context) {
	m, err := h.lib.GetMember(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewMemberResponse(m))
}

// ListLoans 借阅历史
// @Summary 会员借阅历史（最新在前）
// @Tags 会员
// @Produce json
// @Param id path string true "会员ID"
// @Success 200 {object} response.Response{data=[]dto.LoanResponse}
// @Router /api/v1/members/{id}/loans [get]
func (h *MemberHandler) ListLoans(c *gin.Context) {
	records, err := h.lib.MemberLoans(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewLoanList(records, time.Now()))
}

// SetStatus 启用/停用
// @Summary 启用或停用会员
// @Tags 会员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会员ID"
// @Param request body dto.SetMemberStatusRequest true "状态"
// @Success 200 {object} response.Response{data=dto.MemberResponse}
// @Router /api/v1/members/{id}/status [put]
func (h *MemberHandler) SetStatus(c *gin.Context) {
	var req dto.SetMemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return
	}

	id := c.Param("id")
	if err := h.lib.SetMemberActive(c.Request.Context(), id, *req.Active); err != nil {
		response.Error(c, err)
		return
	}

	m, err := h.lib.GetMember(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewMemberResponse(m))
}

// PayFine 缴纳罚款
// @Summary 缴纳罚款（单位：分）
// @Tags 会员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会员ID"
// @Param request body dto.PayFineRequest true "金额"
// @Success 200 {object} response.Response{data=dto.PayFineResponse}
// @Router /api/v1/members/{id}/fines/payments [post]
func (h *MemberHandler) PayFine(c *gin.Context) {
	var req dto.PayFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return
	}

	remaining, err := h.lib.PayFine(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.PayFineResponse{
		Remaining:        remaining,
		RemainingDisplay: loan.FormatAmount(remaining),
	})
}
