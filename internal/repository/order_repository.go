package repository

import (
	"context"
	"time"

	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status        model.OrderStatus
	PaymentMethod model.PaymentMethod
	Page
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	FindByReference(ctx context.Context, provider, reference string) (*model.Order, error)
	ListByUser(ctx context.Context, uid string) ([]model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)
	SetPaymentReference(ctx context.Context, id uint64, provider, reference string) error
	UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (int64, error)
	MarkPaidIfPending(ctx context.Context, id uint64, paidAt time.Time) (int64, error)
	CancelIfPending(ctx context.Context, id uint64) (int64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
	PaidRevenue(ctx context.Context) (decimal.Decimal, error)
	SetDB(db *gorm.DB)
}

type orderRepository struct {
	dbHandle
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	r := &orderRepository{}
	r.SetDB(db)
	return r
}

// Create inserts the order and its items in one transaction.
func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindByReference(ctx context.Context, provider, reference string) (*model.Order, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := db.WithContext(ctx).
		Where("payment_provider = ? AND payment_reference = ?", provider, reference).
		Order("id DESC").
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, uid string) ([]model.Order, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	if err := db.WithContext(ctx).
		Preload("Items").
		Where("user_uid = ?", uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error) {
	db := r.get()
	if db == nil {
		return nil, 0, ErrDBNotReady
	}
	f.Page = f.Page.normalize(50, 200)
	q := db.WithContext(ctx).Model(&model.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	var (
		list  []model.Order
		total int64
	)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("Items").Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *orderRepository) SetPaymentReference(ctx context.Context, id uint64, provider, reference string) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_provider":  provider,
			"payment_reference": reference,
		}).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

// MarkPaidIfPending flips a pending order to paid. Zero rows affected means it was already processed.
func (r *orderRepository) MarkPaidIfPending(ctx context.Context, id uint64, paidAt time.Time) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":  model.OrderStatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) CancelIfPending(ctx context.Context, id uint64) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, model.OrderStatusPending).
		Update("status", model.OrderStatusCancelled)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	var affected int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Order{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// PaidRevenue sums totals of orders that reached payment.
func (r *orderRepository) PaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	db := r.get()
	if db == nil {
		return decimal.Zero, ErrDBNotReady
	}
	var sum decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&model.Order{}).
		Select("SUM(total)").
		Where("status IN ?", []model.OrderStatus{
			model.OrderStatusPaid, model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered,
		}).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
