package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shinyyama/uniforme-store/internal/config"
	"github.com/shinyyama/uniforme-store/internal/db"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	Name     string
	Category string
	Price    string
	Sizes    []string
}

var (
	schools = []string{"Colégio Horizonte", "Escola Estadual Vila Nova", "Instituto São Lucas"}

	clothingSizes = []string{"2", "4", "6", "8", "10", "12", "14", "16", "PP", "P", "M", "G", "GG"}
	shoeSizes     = []string{"28", "30", "32", "34", "36", "38", "40"}

	catalog = []seedProduct{
		{Name: "Camiseta Manga Curta", Category: "camisetas", Price: "49.90", Sizes: clothingSizes},
		{Name: "Camiseta Manga Longa", Category: "camisetas", Price: "59.90", Sizes: clothingSizes},
		{Name: "Camiseta Educação Física", Category: "camisetas", Price: "44.90", Sizes: clothingSizes},
		{Name: "Bermuda Tactel", Category: "bermudas", Price: "54.90", Sizes: clothingSizes},
		{Name: "Calça Moletom", Category: "calcas", Price: "89.90", Sizes: clothingSizes},
		{Name: "Jaqueta Helanca", Category: "agasalhos", Price: "129.90", Sizes: clothingSizes},
		{Name: "Moletom com Capuz", Category: "agasalhos", Price: "149.90", Sizes: clothingSizes},
		{Name: "Saia Short", Category: "saias", Price: "64.90", Sizes: clothingSizes},
		{Name: "Meia Cano Alto (par)", Category: "acessorios", Price: "19.90", Sizes: []string{"P", "M", "G"}},
		{Name: "Tênis Escolar", Category: "calcados", Price: "159.90", Sizes: shoeSizes},
	}
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("products already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	products := buildSeedProducts()
	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Product{}).Error; err != nil {
			return fmt.Errorf("clear products: %w", err)
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		// link each product to the rest of its school's category line
		for i := range products {
			products[i].SimilarProducts = similarTo(products, i)
			if err := tx.Model(&products[i]).Update("similar_products", products[i].SimilarProducts).Error; err != nil {
				return fmt.Errorf("similar products for %d: %w", products[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("seeded %d products for %d schools", len(products), len(schools))
	return nil
}

func buildSeedProducts() []model.Product {
	var out []model.Product
	for _, school := range schools {
		for _, p := range catalog {
			out = append(out, model.Product{
				Name:        fmt.Sprintf("%s - %s", p.Name, school),
				Description: fmt.Sprintf("%s do uniforme oficial do %s.", p.Name, school),
				School:      school,
				Category:    p.Category,
				Price:       decimal.RequireFromString(p.Price),
				Images:      []string{},
				Variations:  []model.Variation{{Name: "Tamanho", Options: p.Sizes}},
				IsActive:    true,
			})
		}
	}
	return out
}

// similarTo returns up to four products of the same school, preferring the same category.
func similarTo(products []model.Product, idx int) []uint64 {
	self := products[idx]
	var same, other []uint64
	for i, p := range products {
		if i == idx || p.School != self.School {
			continue
		}
		if p.Category == self.Category {
			same = append(same, p.ID)
		} else {
			other = append(other, p.ID)
		}
	}
	ids := append(same, other...)
	if len(ids) > 4 {
		ids = ids[:4]
	}
	return ids
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Product{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
