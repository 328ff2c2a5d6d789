package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/shinyyama/uniforme-store/internal/config"
	"github.com/shinyyama/uniforme-store/internal/db"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/storage"
	"gorm.io/gorm"
)

// import-photos uploads studio photos named "<product id>[-anything].<ext>" and attaches them to the product.
func main() {
	dir := flag.String("dir", filepath.Join("..", "front", "public", "product-photos"), "directory with product photos")
	force := flag.Bool("force", false, "attach photos even when the product already has images")
	flag.Parse()

	if err := run(*dir, *force); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

func run(dir string, force bool) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StorageBucket == "" {
		return errors.New("STORAGE_BUCKET is required")
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	uploader, err := storage.NewUploader(ctx, cfg.StorageBucket, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer uploader.Close()

	products := repository.NewProductRepository(gdb)

	paths, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return fmt.Errorf("glob photos: %w", err)
	}
	if len(paths) == 0 {
		log.Printf("no photos found in %s", dir)
		return nil
	}

	imported, skipped := 0, 0
	for _, p := range paths {
		filename := filepath.Base(p)
		id, ok := productIDFromFilename(filename)
		if !ok {
			log.Printf("skip %s: name does not start with a product id", filename)
			skipped++
			continue
		}
		product, err := products.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("skip %s: product %d not found", filename, id)
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("find product %d: %w", id, err)
		}
		if len(product.Images) > 0 && !force {
			skipped++
			continue
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", filename, err)
		}
		if len(data) > storage.MaxImageBytes {
			log.Printf("skip %s: larger than %d bytes", filename, storage.MaxImageBytes)
			skipped++
			continue
		}
		contentType := contentTypeFor(filename)
		url, err := uploader.Upload(ctx, storage.ProductImagePath(id, contentType), contentType, data)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filename, err)
		}
		product.Images = append(product.Images, url)
		if err := products.Update(ctx, product); err != nil {
			return fmt.Errorf("update product %d: %w", id, err)
		}
		imported++
	}

	log.Printf("import complete: imported=%d skipped=%d total=%d", imported, skipped, len(paths))
	return nil
}

func productIDFromFilename(filename string) (uint64, bool) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	end := strings.IndexFunc(base, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(base)
	}
	if end == 0 {
		return 0, false
	}
	id, err := strconv.ParseUint(base[:end], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
