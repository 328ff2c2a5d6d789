package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinyyama/uniforme-store/internal/ai"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductInput struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	School          string            `json:"school"`
	Category        string            `json:"category"`
	Price           decimal.Decimal   `json:"price"`
	Images          []string          `json:"images"`
	Variations      []model.Variation `json:"variations"`
	SimilarProducts []uint64          `json:"similar_products"`
	IsActive        *bool             `json:"is_active,omitempty"`
}

type ProductDetail struct {
	model.Product
	Similar []model.Product `json:"similar"`
}

type ImageUpload struct {
	ProductID uint64 `json:"product_id"`
	Image     string `json:"image"`
	Enhance   bool   `json:"enhance"`
	Style     string `json:"style"`
}

type ProductService interface {
	ListActive(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error)
	GetActive(ctx context.Context, id uint64) (*ProductDetail, error)
	ListAll(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error)
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, id uint64, in ProductInput) (*model.Product, error)
	SetActive(ctx context.Context, id uint64, active bool) error
	UploadImage(ctx context.Context, in ImageUpload) (*model.Product, error)
	SuggestDescription(ctx context.Context, id uint64) (string, error)
}

type productService struct {
	repo     repository.ProductRepository
	images   ImageStore
	enhancer ImageEnhancer
	writer   DescriptionWriter
}

// NewProductService accepts nil images, enhancer and writer; the matching admin actions then fail.
func NewProductService(repo repository.ProductRepository, images ImageStore, enhancer ImageEnhancer, writer DescriptionWriter) ProductService {
	return &productService{repo: repo, images: images, enhancer: enhancer, writer: writer}
}

func (s *productService) ListActive(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	f.IncludeInactive = false
	return s.repo.List(ctx, f)
}

func (s *productService) GetActive(ctx context.Context, id uint64) (*ProductDetail, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !p.IsActive {
		return nil, ErrNotFound
	}
	similar := []model.Product{}
	if len(p.SimilarProducts) > 0 {
		similar, err = s.repo.FindByIDs(ctx, p.SimilarProducts, true)
		if err != nil {
			return nil, err
		}
	}
	return &ProductDetail{Product: *p, Similar: similar}, nil
}

func (s *productService) ListAll(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	f.IncludeInactive = true
	return s.repo.List(ctx, f)
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.School = strings.TrimSpace(in.School)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || len(in.Name) > 160 {
		return fmt.Errorf("%w: name is required (max 160 chars)", ErrInvalidInput)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	in.Price = in.Price.Round(2)
	for i, v := range in.Variations {
		if strings.TrimSpace(v.Name) == "" || len(v.Options) == 0 {
			return fmt.Errorf("%w: variation %d needs a name and options", ErrInvalidInput, i)
		}
	}
	return nil
}

func (in ProductInput) apply(p *model.Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.School = in.School
	p.Category = in.Category
	p.Price = in.Price
	p.Images = nonNil(in.Images)
	p.Variations = in.Variations
	if p.Variations == nil {
		p.Variations = []model.Variation{}
	}
	similar := make([]uint64, 0, len(in.SimilarProducts))
	for _, id := range in.SimilarProducts {
		if id != 0 && id != p.ID {
			similar = append(similar, id)
		}
	}
	p.SimilarProducts = similar
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p := &model.Product{IsActive: true}
	in.apply(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	// gorm skips the zero value of columns with a default on insert
	if !p.IsActive {
		if _, err := s.repo.SetActive(ctx, p.ID, false); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, id uint64, in ProductInput) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	in.apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetActive(false) is the soft delete used by the back-office.
func (s *productService) SetActive(ctx context.Context, id uint64, active bool) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translate(err)
	}
	_, err := s.repo.SetActive(ctx, id, active)
	return err
}

func (s *productService) UploadImage(ctx context.Context, in ImageUpload) (*model.Product, error) {
	if s.images == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", ErrInvalidInput)
	}
	p, err := s.repo.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, translate(err)
	}
	data, contentType, err := storage.DecodeBase64Image(in.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	log := logger.FromContext(ctx).With(zap.Uint64("product_id", p.ID))
	if in.Enhance && s.enhancer != nil && s.enhancer.Enabled() {
		res, err := s.enhancer.Enhance(ctx, ai.ImageEnhanceRequest{Image: data, MimeType: contentType, Style: in.Style})
		if err != nil {
			// the original photo is still usable
			log.Warn("image enhancement failed, uploading original", zap.Error(err))
		} else {
			data, contentType = res.Image, res.MimeType
			log.Info("image enhanced", zap.Int64("elapsed_ms", res.ElapsedMs))
		}
	}

	url, err := s.images.Upload(ctx, storage.ProductImagePath(p.ID, contentType), contentType, data)
	if err != nil {
		return nil, err
	}
	p.Images = append(p.Images, url)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) SuggestDescription(ctx context.Context, id uint64) (string, error) {
	if s.writer == nil || !s.writer.Enabled() {
		return "", fmt.Errorf("%w: description writer is not configured", ErrInvalidInput)
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", translate(err)
	}
	var options []string
	for _, v := range p.Variations {
		options = append(options, v.Options...)
	}
	text, err := s.writer.Describe(ctx, p.Name, p.School, p.Category, options)
	if err != nil {
		return "", fmt.Errorf("describe product %d: %w", id, err)
	}
	return text, nil
}
