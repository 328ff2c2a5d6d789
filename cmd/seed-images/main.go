package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shinyyama/uniforme-store/internal/ai"
	"github.com/shinyyama/uniforme-store/internal/config"
	"github.com/shinyyama/uniforme-store/internal/db"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/storage"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	limit := flag.Int("limit", 0, "max products to process (0 = all)")
	placeholderOnly := flag.Bool("placeholder", false, "skip Gemini and upload placeholder photos")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.StorageBucket == "" {
		log.Fatalf("STORAGE_BUCKET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("failed to get sql db: %v", err)
	}
	defer sqlDB.Close()

	uploader, err := storage.NewUploader(ctx, cfg.StorageBucket, cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer uploader.Close()

	gemini := ai.NewGeminiImageClient(cfg.GeminiAPIKey, cfg.GeminiImageModel, nil)
	log.Printf("gemini model: %s (enabled=%v)", cfg.GeminiImageModel, gemini.Enabled() && !*placeholderOnly)

	products := repository.NewProductRepository(gdb)
	targets, err := products.ListWithoutImages(ctx)
	if err != nil {
		log.Fatalf("failed to list products: %v", err)
	}
	if *limit > 0 && len(targets) > *limit {
		targets = targets[:*limit]
	}
	log.Printf("products without images: %d", len(targets))

	done := 0
	for i := range targets {
		p := &targets[i]
		if err := fillImage(ctx, p, gemini, uploader, products, *placeholderOnly); err != nil {
			log.Printf("[product %d] skipped: %v", p.ID, err)
			continue
		}
		done++
	}
	log.Printf("seed-images completed: %d/%d products updated", done, len(targets))
}

func fillImage(ctx context.Context, p *model.Product, gemini *ai.GeminiImageClient, uploader *storage.Uploader, products repository.ProductRepository, placeholderOnly bool) error {
	var (
		data        []byte
		contentType = "image/png"
		err         error
	)
	if !placeholderOnly && gemini.Enabled() {
		res, gerr := gemini.Generate(ctx, p.Name, p.Category)
		if gerr == nil {
			data, contentType = res.Image, res.MimeType
			log.Printf("[product %d] gemini success in %dms", p.ID, res.ElapsedMs)
		} else {
			log.Printf("[product %d] gemini failed, fallback to placeholder: %v", p.ID, gerr)
		}
	}
	if data == nil {
		data, err = fetchPlaceholder(ctx, fmt.Sprintf("uniforme-%d", p.ID))
		if err != nil {
			return fmt.Errorf("placeholder: %w", err)
		}
		contentType = http.DetectContentType(data)
	}

	publicURL, err := uploader.Upload(ctx, storage.ProductImagePath(p.ID, contentType), contentType, data)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	p.Images = append(p.Images, publicURL)
	if err := products.Update(ctx, p); err != nil {
		return fmt.Errorf("db update: %w", err)
	}
	log.Printf("[product %d] image stored: %s", p.ID, publicURL)
	return nil
}

func fetchPlaceholder(ctx context.Context, seed string) ([]byte, error) {
	u := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", url.PathEscape(seed))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("placeholder status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
