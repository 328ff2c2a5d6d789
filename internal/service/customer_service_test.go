package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
)

func TestFeedbackSubmitValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := NewFeedbackService(repository.NewFeedbackRepository(s.db))

	tests := []struct {
		name    string
		uid     string
		rating  int
		comment string
		want    error
	}{
		{"anonymous", "", 5, "ok", ErrUnauthorized},
		{"rating too low", "u1", 0, "ok", ErrInvalidInput},
		{"rating too high", "u1", 6, "ok", ErrInvalidInput},
		{"comment too long", "u1", 4, strings.Repeat("é", 1001), ErrInvalidInput},
		{"comment at the limit", "u1", 4, strings.Repeat("é", 1000), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.uid, "Ana", tt.rating, tt.comment)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err=%v want %v", err, tt.want)
			}
		})
	}
}

func TestFavoritesAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := s.addProduct(t, "camiseta", "59.90", true)
	svc := NewFavoriteService(repository.NewFavoriteRepository(s.db), s.products)

	for i := 0; i < 2; i++ {
		f, err := svc.Add(ctx, "u1", p.ID, "")
		if err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
		if f.School != p.School {
			t.Fatalf("school=%q want %q", f.School, p.School)
		}
	}
	list, err := svc.List(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("favorites=%d err=%v", len(list), err)
	}
	if _, err := svc.Add(ctx, "u1", 999, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown product err=%v", err)
	}
	if err := svc.Remove(ctx, "u1", p.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list, _ = svc.List(ctx, "u1")
	if len(list) != 0 {
		t.Fatalf("favorites after remove=%d", len(list))
	}
}

func TestProfileGetAndSave(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := NewProfileService(repository.NewProfileRepository(s.db))

	p, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.UID != "u1" || p.FullName != "" {
		t.Fatalf("empty profile=%+v", p)
	}

	saved, err := svc.Save(ctx, "u1", ProfileInput{
		FullName: " Ana Souza ",
		Email:    "ANA@example.com",
		Address:  model.Address{City: "São Paulo", State: "SP"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.FullName != "Ana Souza" || saved.Email != "ana@example.com" || saved.Address.Data().City != "São Paulo" {
		t.Fatalf("profile=%+v", saved)
	}

	if _, err := svc.Save(ctx, "u1", ProfileInput{FullName: "Ana Lima"}); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, _ := svc.Get(ctx, "u1")
	if got.FullName != "Ana Lima" {
		t.Fatalf("upsert did not update: %+v", got)
	}
	if _, err := svc.Get(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous err=%v", err)
	}
}

func TestProductDetailHidesInactive(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := s.addProduct(t, "camiseta", "59.90", true)
	b := s.addProduct(t, "bermuda", "45", true)
	c := s.addProduct(t, "jaqueta", "120", false)
	a.SimilarProducts = []uint64{b.ID, c.ID}
	if err := s.products.Update(ctx, a); err != nil {
		t.Fatal(err)
	}
	svc := NewProductService(s.products, nil, nil, nil)

	d, err := svc.GetActive(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(d.Similar) != 1 || d.Similar[0].ID != b.ID {
		t.Fatalf("similar=%+v", d.Similar)
	}
	if _, err := svc.GetActive(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive err=%v", err)
	}
}
