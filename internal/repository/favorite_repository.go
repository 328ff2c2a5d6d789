package repository

import (
	"context"

	"github.com/shinyyama/uniforme-store/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Add(ctx context.Context, f *model.Favorite) error
	Remove(ctx context.Context, uid string, productID uint64) (int64, error)
	ListByUser(ctx context.Context, uid string) ([]model.Favorite, error)
	SetDB(db *gorm.DB)
}

type favoriteRepository struct {
	dbHandle
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	r := &favoriteRepository{}
	r.SetDB(db)
	return r
}

// Add is idempotent on (user, product, school).
func (r *favoriteRepository) Add(ctx context.Context, f *model.Favorite) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, uid string, productID uint64) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).
		Where("user_uid = ? AND product_id = ?", uid, productID).
		Delete(&model.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *favoriteRepository) ListByUser(ctx context.Context, uid string) ([]model.Favorite, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Favorite
	if err := db.WithContext(ctx).
		Where("user_uid = ?", uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
