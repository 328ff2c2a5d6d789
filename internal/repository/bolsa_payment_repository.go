package repository

import (
	"context"
	"time"

	"github.com/shinyyama/uniforme-store/internal/model"
	"gorm.io/gorm"
)

type BolsaPaymentRepository interface {
	Create(ctx context.Context, p *model.BolsaUniformePayment) error
	FindByID(ctx context.Context, id uint64) (*model.BolsaUniformePayment, error)
	List(ctx context.Context, status model.BolsaStatus, page Page) ([]model.BolsaUniformePayment, int64, error)
	Approve(ctx context.Context, id uint64, reviewer, notes string, order *model.Order) error
	Reject(ctx context.Context, id uint64, reviewer, notes string) error
	Delete(ctx context.Context, id uint64) (int64, error)
	CountByStatus(ctx context.Context, status model.BolsaStatus) (int64, error)
	SetDB(db *gorm.DB)
}

type bolsaPaymentRepository struct {
	dbHandle
}

func NewBolsaPaymentRepository(db *gorm.DB) BolsaPaymentRepository {
	r := &bolsaPaymentRepository{}
	r.SetDB(db)
	return r
}

func (r *bolsaPaymentRepository) Create(ctx context.Context, p *model.BolsaUniformePayment) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Create(p).Error
}

func (r *bolsaPaymentRepository) FindByID(ctx context.Context, id uint64) (*model.BolsaUniformePayment, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var p model.BolsaUniformePayment
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *bolsaPaymentRepository) List(ctx context.Context, status model.BolsaStatus, page Page) ([]model.BolsaUniformePayment, int64, error) {
	db := r.get()
	if db == nil {
		return nil, 0, ErrDBNotReady
	}
	page = page.normalize(50, 200)
	q := db.WithContext(ctx).Model(&model.BolsaUniformePayment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var (
		list  []model.BolsaUniformePayment
		total int64
	)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("id DESC").Limit(page.Limit).Offset(page.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Approve creates the paid order and links it to the payment, only while the payment is pending.
func (r *bolsaPaymentRepository) Approve(ctx context.Context, id uint64, reviewer, notes string, order *model.Order) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.BolsaUniformePayment{}, id).Error; err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&model.BolsaUniformePayment{}).
			Where("id = ? AND status = ?", id, model.BolsaStatusPending).
			Updates(map[string]interface{}{
				"status":      model.BolsaStatusApproved,
				"order_id":    order.ID,
				"reviewed_by": reviewer,
				"reviewed_at": now,
				"notes":       notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}
		return nil
	})
}

func (r *bolsaPaymentRepository) Reject(ctx context.Context, id uint64, reviewer, notes string) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.BolsaUniformePayment{}, id).Error; err != nil {
			return err
		}
		res := tx.Model(&model.BolsaUniformePayment{}).
			Where("id = ? AND status = ?", id, model.BolsaStatusPending).
			Updates(map[string]interface{}{
				"status":      model.BolsaStatusRejected,
				"reviewed_by": reviewer,
				"reviewed_at": time.Now(),
				"notes":       notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}
		return nil
	})
}

func (r *bolsaPaymentRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).Delete(&model.BolsaUniformePayment{}, id)
	return res.RowsAffected, res.Error
}

func (r *bolsaPaymentRepository) CountByStatus(ctx context.Context, status model.BolsaStatus) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := db.WithContext(ctx).
		Model(&model.BolsaUniformePayment{}).
		Where("status = ?", status).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
