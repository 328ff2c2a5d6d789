package repository

import (
	"context"

	"github.com/shinyyama/uniforme-store/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) error
	List(ctx context.Context, page Page) ([]model.Profile, int64, error)
	SetDB(db *gorm.DB)
}

type profileRepository struct {
	dbHandle
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	r := &profileRepository{}
	r.SetDB(db)
	return r
}

func (r *profileRepository) Get(ctx context.Context, uid string) (*model.Profile, error) {
	db := r.get()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Profile
	if err := db.WithContext(ctx).Where("uid = ?", uid).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	db := r.get()
	if db == nil {
		return ErrDBNotReady
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "phone", "cpf", "address", "updated_at"}),
	}).Create(p).Error
}

func (r *profileRepository) List(ctx context.Context, page Page) ([]model.Profile, int64, error) {
	db := r.get()
	if db == nil {
		return nil, 0, ErrDBNotReady
	}
	page = page.normalize(50, 200)
	var (
		list  []model.Profile
		total int64
	)
	q := db.WithContext(ctx).Model(&model.Profile{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
