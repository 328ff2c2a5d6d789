package repository

import (
	"context"

	"github.com/shinyyama/uniforme-store/internal/model"
	"gorm.io/gorm"
)

type ProductFilter struct {
	School          string
	Category        string
	IncludeInactive bool
	Page
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint64) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint64, activeOnly bool) ([]model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, int64, error)
	ListWithoutImages(ctx context.Context) ([]model.Product, error)
	SetActive(ctx context.Context, id uint64, active bool) (int64, error)
	SetDB(db *gorm.DB)
}

type productRepository struct {
	dbHandle
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	r := &productRepository{}
	r.SetDB(db)
	return r
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Save(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Product
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint64, activeOnly bool) ([]model.Product, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var list []model.Product
	q := db.WithContext(ctx).Where("id IN ?", ids)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepository) List(ctx context.Context, f ProductFilter) ([]model.Product, int64, error) {
	db := r.get()
	if db == nil {
		return nil, 0, ErrDBNotReady
	}
	f.Page = f.Page.normalize(24, 100)
	q := db.WithContext(ctx).Model(&model.Product{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.School != "" {
		q = q.Where("school = ?", f.School)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var (
		list  []model.Product
		total int64
	)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("name ASC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepository) ListWithoutImages(ctx context.Context) ([]model.Product, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var all []model.Product
	if err := db.WithContext(ctx).Order("id ASC").Find(&all).Error; err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(all))
	for _, p := range all {
		if len(p.Images) == 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *productRepository) SetActive(ctx context.Context, id uint64, active bool) (int64, error) {
	db := r.get()
	if db == nil {
		return 0, ErrDBNotReady
	}
	res := db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("is_active", active)
	return res.RowsAffected, res.Error
}
