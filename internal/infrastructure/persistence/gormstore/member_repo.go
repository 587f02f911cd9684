package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// memberRepository 会员仓储实现(GORM)
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储
func NewMemberRepository(db *gorm.DB) member.Repository {
	return &memberRepository{db: db}
}

// Create 创建会员
func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	model := &MemberModel{
		MemberID:       m.MemberID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Address:        m.Address,
		MembershipDate: m.MembershipDate,
		IsActive:       m.IsActive,
		TotalFines:     m.TotalFines,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return member.ErrMemberDuplicate
		}
		return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to create member", err)
	}
	return nil
}

// FindByID 根据会员编号查找
func (r *memberRepository) FindByID(ctx context.Context, memberID string) (*member.Member, error) {
	var model MemberModel
	err := getDB(ctx, r.db).Where("member_id = ?", memberID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to query member", err)
	}
	return toMemberEntity(&model), nil
}

// FindAll 全表扫描
func (r *memberRepository) FindAll(ctx context.Context) ([]*member.Member, error) {
	var models []MemberModel
	if err := getDB(ctx, r.db).Order("member_id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to list members", err)
	}
	members := make([]*member.Member, len(models))
	for i := range models {
		members[i] = toMemberEntity(&models[i])
	}
	return members, nil
}

// AddFines 原子调整累计罚款
// UPDATE members SET total_fines = total_fines + delta WHERE member_id = ? AND total_fines + delta >= 0
func (r *memberRepository) AddFines(ctx context.Context, memberID string, delta int64) error {
	db := getDB(ctx, r.db)
	result := db.Model(&MemberModel{}).
		Where("member_id = ?", memberID).
		Where("total_fines + ? >= 0", delta). // 防止罚款为负
		Update("total_fines", gorm.Expr("total_fines + ?", delta))

	if result.Error != nil {
		return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to update fines", result.Error)
	}

	if result.RowsAffected == 0 {
		// 会员不存在,或者缴费超过欠款,再查一次确定原因
		if _, err := r.FindByID(ctx, memberID); err != nil {
			return err
		}
		return member.ErrFineOverpayment
	}
	return nil
}

// UpdateStatus 更新启用状态
func (r *memberRepository) UpdateStatus(ctx context.Context, memberID string, active bool) error {
	result := getDB(ctx, r.db).Model(&MemberModel{}).
		Where("member_id = ?", memberID).
		Update("is_active", active)

	if result.Error != nil {
		return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to update member status", result.Error)
	}
	if result.RowsAffected == 0 {
		// 状态未变化时MySQL也返回0行,需要确认会员是否存在
		if _, err := r.FindByID(ctx, memberID); err != nil {
			return err
		}
	}
	return nil
}

// toMemberEntity GORM模型 → 领域实体
// 持有集合不在会员表中,由未归还的借阅记录还原
func toMemberEntity(model *MemberModel) *member.Member {
	m := member.NewMember(model.MemberID, model.Name, model.Email, model.Phone, model.Address)
	m.MembershipDate = model.MembershipDate
	m.IsActive = model.IsActive
	m.TotalFines = model.TotalFines
	return m
}
