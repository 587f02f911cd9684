package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅记录仓储实现(GORM)
// 设计说明:
// 1. 借出/归还各自在一个事务内完成,借阅记录、在架副本数、会员罚款一起提交或一起回滚
// 2. 副本数的增减使用带条件的UPDATE,不会越过[0, total_copies]
type loanRepository struct {
	db *gorm.DB
	tx *TxManager
}

// NewLoanRepository 创建借阅记录仓储
func NewLoanRepository(db *gorm.DB, tx *TxManager) loan.Repository {
	return &loanRepository{db: db, tx: tx}
}

// Open 写入未归还记录并扣减在架副本
func (r *loanRepository) Open(ctx context.Context, rec *loan.Record) error {
	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, r.db)

		// 1. 同一(会员, ISBN)只允许一条未归还记录
		var open int64
		if err := db.Model(&LoanModel{}).
			Where("member_id = ? AND isbn = ? AND return_date IS NULL", rec.MemberID, rec.ISBN).
			Count(&open).Error; err != nil {
			return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to query open loans", err)
		}
		if open > 0 {
			return member.ErrAlreadyBorrowed
		}

		// 2. 扣减在架副本
		// UPDATE books SET available_copies = available_copies - 1 WHERE isbn = ? AND available_copies > 0
		if err := r.shiftAvailability(db, rec.ISBN, -1); err != nil {
			return err
		}

		// 3. 写入借阅记录
		model := &LoanModel{
			MemberID:   rec.MemberID,
			ISBN:       rec.ISBN,
			BorrowDate: rec.BorrowDate,
			DueDate:    rec.DueDate,
		}
		if err := db.Create(model).Error; err != nil {
			return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to insert borrowing record", err)
		}

		rec.ID = model.ID
		return nil
	})
}

// FindOpen 最近的一条未归还记录
// SELECT ... WHERE member_id = ? AND isbn = ? AND return_date IS NULL ORDER BY borrow_date DESC LIMIT 1
func (r *loanRepository) FindOpen(ctx context.Context, memberID, isbn string) (*loan.Record, error) {
	model, err := r.findOpen(getDB(ctx, r.db), memberID, isbn)
	if err != nil {
		return nil, err
	}
	return toLoanEntity(model), nil
}

// Close 归还最近的一条未归还记录
func (r *loanRepository) Close(ctx context.Context, memberID, isbn string, fine int64, returnedAt time.Time) error {
	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, r.db)

		// 1. 定位记录(只更新这一条,而不是该会员该书的所有记录)
		model, err := r.findOpen(db, memberID, isbn)
		if err != nil {
			return err
		}

		// 2. 写入归还时间和罚款
		result := db.Model(&LoanModel{}).
			Where("record_id = ? AND return_date IS NULL", model.ID).
			Updates(map[string]interface{}{
				"return_date": returnedAt,
				"fine_paid":   fine,
			})
		if result.Error != nil {
			return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to close borrowing record", result.Error)
		}
		if result.RowsAffected == 0 {
			return loan.ErrOpenLoanNotFound
		}

		// 3. 归还在架副本
		if err := r.shiftAvailability(db, isbn, 1); err != nil {
			return err
		}

		// 4. 罚款计入会员累计罚款
		if fine > 0 {
			result := db.Model(&MemberModel{}).
				Where("member_id = ?", memberID).
				Update("total_fines", gorm.Expr("total_fines + ?", fine))
			if result.Error != nil {
				return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to apply fine", result.Error)
			}
			if result.RowsAffected == 0 {
				return member.ErrMemberNotFound
			}
		}
		return nil
	})
}

// ListOpen 所有未归还记录
func (r *loanRepository) ListOpen(ctx context.Context) ([]*loan.Record, error) {
	var models []LoanModel
	err := getDB(ctx, r.db).
		Where("return_date IS NULL").
		Order("borrow_date ASC, record_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to list open loans", err)
	}
	return toLoanEntities(models), nil
}

// ListByMember 会员的借阅历史
func (r *loanRepository) ListByMember(ctx context.Context, memberID string) ([]*loan.Record, error) {
	var models []LoanModel
	err := getDB(ctx, r.db).
		Where("member_id = ?", memberID).
		Order("borrow_date DESC, record_id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to list member loans", err)
	}
	return toLoanEntities(models), nil
}

func (r *loanRepository) findOpen(db *gorm.DB, memberID, isbn string) (*LoanModel, error) {
	var model LoanModel
	err := db.Where("member_id = ? AND isbn = ? AND return_date IS NULL", memberID, isbn).
		Order("borrow_date DESC, record_id DESC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrOpenLoanNotFound
		}
		return nil, apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to query open loan", err)
	}
	return &model, nil
}

// shiftAvailability 原子调整在架副本数
// delta<0: available_copies + delta >= 0; delta>0: available_copies + delta <= total_copies
func (r *loanRepository) shiftAvailability(db *gorm.DB, isbn string, delta int) error {
	query := db.Model(&BookModel{}).Where("isbn = ?", isbn)
	if delta < 0 {
		query = query.Where("available_copies + ? >= 0", delta)
	} else {
		query = query.Where("available_copies + ? <= total_copies", delta)
	}
	result := query.Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if result.Error != nil {
		return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to update availability", result.Error)
	}

	if result.RowsAffected == 0 {
		// 图书不存在,或者副本数已到边界
		var model BookModel
		if err := db.Where("isbn = ?", isbn).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.WrapCode(apperrors.ErrCodeDatabaseError, "failed to query book", err)
		}
		if delta < 0 {
			return book.ErrNoCopiesAvailable
		}
		return book.ErrOverReturn
	}
	return nil
}

// toLoanEntity GORM模型 → 领域实体
func toLoanEntity(model *LoanModel) *loan.Record {
	return &loan.Record{
		ID:         model.ID,
		MemberID:   model.MemberID,
		ISBN:       model.ISBN,
		BorrowDate: model.BorrowDate,
		DueDate:    model.DueDate,
		ReturnDate: model.ReturnDate,
		FinePaid:   model.FinePaid,
	}
}

func toLoanEntities(models []LoanModel) []*loan.Record {
	records := make([]*loan.Record, len(models))
	for i := range models {
		records[i] = toLoanEntity(&models[i])
	}
	return records
}
