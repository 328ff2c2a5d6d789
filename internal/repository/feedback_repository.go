package repository

import (
	"context"

	"github.com/shinyyama/uniforme-store/internal/model"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
	List(ctx context.Context, visibleOnly bool, page Page) ([]model.Feedback, int64, error)
	SetVisible(ctx context.Context, id uint64, visible bool) (int64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
	SetDB(db *gorm.DB)
}

type feedbackRepository struct {
	dbHandle
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	r := &feedbackRepository{}
	r.SetDB(db)
	return r
}

func (r *feedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Create(f).Error
}

func (r *feedbackRepository) List(ctx context.Context, visibleOnly bool, page Page) ([]model.Feedback, int64, error) {
	db := r.get()
	if db == nil {
		return nil, 0, ErrDBNotReady
	}
	page = page.normalize(20, 100)
	q := db.WithContext(ctx).Model(&model.Feedback{})
	if visibleOnly {
		q = q.Where("is_visible = ?", true)
	}
	var (
		list  []model.Feedback
		total int64
	)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *feedbackRepository) SetVisible(ctx context.Context, id uint64, visible bool) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).Model(&model.Feedback{}).Where("id = ?", id).Update("is_visible", visible)
	return res.RowsAffected, res.Error
}

func (r *feedbackRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).Delete(&model.Feedback{}, id)
	return res.RowsAffected, res.Error
}
