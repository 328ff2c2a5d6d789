package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shinyyama/uniforme-store/internal/adminauth"
	"github.com/shinyyama/uniforme-store/internal/ai"
	"github.com/shinyyama/uniforme-store/internal/config"
	"github.com/shinyyama/uniforme-store/internal/db"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/metrics"
	appmw "github.com/shinyyama/uniforme-store/internal/middleware"
	"github.com/shinyyama/uniforme-store/internal/payment"
	"github.com/shinyyama/uniforme-store/internal/server"
	"github.com/shinyyama/uniforme-store/internal/storage"
	"go.uber.org/zap"
)

var (
	gitSHA    = "dev"
	buildTime = ""
)

const serviceName = "uniforme-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.AppEnv, serviceName); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()
	lg := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Config:   cfg,
		Metrics:  metrics.New(serviceName),
		Admin:    adminauth.NewIssuer(cfg.AdminTokenSecret, cfg.AdminTokenTTL, cfg.AdminPasswordHash, cfg.CashierPasswordHash),
		Stripe:   payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		Pix:      payment.NewMercadoPagoClient(cfg.MercadoPagoAccessToken, nil),
		Enhancer: ai.NewGeminiImageClient(cfg.GeminiAPIKey, cfg.GeminiImageModel, nil),
		Writer:   ai.NewDescriptionClient(cfg.GeminiAPIKey, cfg.GeminiTextModel),
		SHA:      gitSHA,
		Build:    buildTime,
	}

	if cfg.FirebaseProjectID != "" {
		authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, cfg.CredentialsFile)
		if err != nil {
			lg.Fatal("failed to init firebase auth", zap.Error(err))
		}
		opts.Auth = authMw
	} else {
		lg.Warn("FIREBASE_PROJECT_ID is not set; customer routes will reject every request")
	}

	if cfg.StorageBucket != "" {
		uploader, err := storage.NewUploader(ctx, cfg.StorageBucket, cfg.CredentialsFile)
		if err != nil {
			lg.Error("storage uploader disabled", zap.Error(err))
		} else {
			defer uploader.Close()
			opts.Images = uploader
		}
	}
	if cfg.AdminPasswordHash == "" {
		lg.Warn("ADMIN_PASSWORD_HASH is not set; admin login is disabled")
	}

	srv := server.New(opts)
	addr := ":" + cfg.Port
	errCh := make(chan error, 1)

	go func() {
		lg.Info("starting server", zap.String("addr", addr), zap.String("git_sha", gitSHA))
		errCh <- srv.Start(addr)
	}()

	// The listener comes up before the database so Cloud Run health checks pass during cold starts.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			lg.Error("db connect error", zap.Error(err))
			return
		}
		if err := db.Migrate(conn); err != nil {
			lg.Error("auto migrate error", zap.Error(err))
		}
		srv.SetDB(conn)
		lg.Info("database ready")
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error("shutdown error", zap.Error(err))
			os.Exit(1)
		}
	}
}
