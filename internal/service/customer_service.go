package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"gorm.io/datatypes"
)

const maxFeedbackComment = 1000

type FavoriteService interface {
	List(ctx context.Context, uid string) ([]model.Favorite, error)
	Add(ctx context.Context, uid string, productID uint64, school string) (*model.Favorite, error)
	Remove(ctx context.Context, uid string, productID uint64) error
}

type favoriteService struct {
	repo     repository.FavoriteRepository
	products repository.ProductRepository
}

func NewFavoriteService(repo repository.FavoriteRepository, products repository.ProductRepository) FavoriteService {
	return &favoriteService{repo: repo, products: products}
}

func (s *favoriteService) List(ctx context.Context, uid string) ([]model.Favorite, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, uid)
}

// Add is idempotent; school defaults to the product's school.
func (s *favoriteService) Add(ctx context.Context, uid string, productID uint64, school string) (*model.Favorite, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, translate(err)
	}
	school = strings.TrimSpace(school)
	if school == "" {
		school = p.School
	}
	f := &model.Favorite{UserUID: uid, ProductID: productID, School: school}
	if err := s.repo.Add(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *favoriteService) Remove(ctx context.Context, uid string, productID uint64) error {
	if uid == "" {
		return ErrUnauthorized
	}
	_, err := s.repo.Remove(ctx, uid, productID)
	return err
}

type FeedbackService interface {
	ListVisible(ctx context.Context, page repository.Page) ([]model.Feedback, int64, error)
	ListAll(ctx context.Context, page repository.Page) ([]model.Feedback, int64, error)
	Submit(ctx context.Context, uid, userName string, rating int, comment string) (*model.Feedback, error)
	SetVisible(ctx context.Context, id uint64, visible bool) error
	Delete(ctx context.Context, id uint64) error
}

type feedbackService struct {
	repo repository.FeedbackRepository
}

func NewFeedbackService(repo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo}
}

func (s *feedbackService) ListVisible(ctx context.Context, page repository.Page) ([]model.Feedback, int64, error) {
	return s.repo.List(ctx, true, page)
}

func (s *feedbackService) ListAll(ctx context.Context, page repository.Page) ([]model.Feedback, int64, error) {
	return s.repo.List(ctx, false, page)
}

// Submit stores hidden feedback; an admin decides what is shown on the storefront.
func (s *feedbackService) Submit(ctx context.Context, uid, userName string, rating int, comment string) (*model.Feedback, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxFeedbackComment {
		return nil, fmt.Errorf("%w: comment is limited to %d characters", ErrInvalidInput, maxFeedbackComment)
	}
	f := &model.Feedback{
		UserUID:  uid,
		UserName: strings.TrimSpace(userName),
		Rating:   rating,
		Comment:  comment,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *feedbackService) SetVisible(ctx context.Context, id uint64, visible bool) error {
	n, err := s.repo.SetVisible(ctx, id, visible)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *feedbackService) Delete(ctx context.Context, id uint64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type ProfileInput struct {
	FullName string        `json:"full_name"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	CPF      string        `json:"cpf"`
	Address  model.Address `json:"address"`
}

type ProfileService interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Save(ctx context.Context, uid string, in ProfileInput) (*model.Profile, error)
	List(ctx context.Context, page repository.Page) ([]model.Profile, int64, error)
}

type profileService struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

// Get returns an empty profile for users who never saved one.
func (s *profileService) Get(ctx context.Context, uid string) (*model.Profile, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	p, err := s.repo.Get(ctx, uid)
	if err != nil {
		if translate(err) == ErrNotFound {
			return &model.Profile{UID: uid}, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *profileService) Save(ctx context.Context, uid string, in ProfileInput) (*model.Profile, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	p := &model.Profile{
		UID:      uid,
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    strings.TrimSpace(in.Phone),
		CPF:      strings.TrimSpace(in.CPF),
		Address:  datatypes.NewJSONType(in.Address),
	}
	if len(p.FullName) > 160 {
		return nil, fmt.Errorf("%w: full_name is limited to 160 characters", ErrInvalidInput)
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, uid)
}

func (s *profileService) List(ctx context.Context, page repository.Page) ([]model.Profile, int64, error) {
	return s.repo.List(ctx, page)
}
