package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/uniforme-store/internal/adminauth"
	"github.com/shinyyama/uniforme-store/internal/checkout"
	"github.com/shinyyama/uniforme-store/internal/config"
	"github.com/shinyyama/uniforme-store/internal/handler"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/metrics"
	appmw "github.com/shinyyama/uniforme-store/internal/middleware"
	"github.com/shinyyama/uniforme-store/internal/payment"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/service"
	"gorm.io/gorm"
)

// Options carries the external collaborators; nil optional clients disable their features.
type Options struct {
	Config   *config.Config
	DB       *gorm.DB
	Metrics  *metrics.Metrics
	Auth     *appmw.AuthMiddleware
	Admin    *adminauth.Issuer
	Stripe   service.StripeGateway
	Pix      service.PixGateway
	Images   service.ImageStore
	Enhancer service.ImageEnhancer
	Writer   service.DescriptionWriter
	SHA      string
	Build    string
}

type dbSetter interface {
	SetDB(db *gorm.DB)
}

type Server struct {
	e       *echo.Echo
	repos   []dbSetter
	dbReady atomic.Bool
}

func New(opts Options) *Server {
	cfg := opts.Config
	m := opts.Metrics
	if m == nil {
		m = metrics.New("uniforme-api")
	}
	if opts.Admin == nil {
		opts.Admin = adminauth.NewIssuer(cfg.AdminTokenSecret, cfg.AdminTokenTTL, cfg.AdminPasswordHash, cfg.CashierPasswordHash)
	}
	if opts.Stripe == nil {
		opts.Stripe = payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}
	if opts.Pix == nil {
		opts.Pix = payment.NewMercadoPagoClient(cfg.MercadoPagoAccessToken, nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(logger.Middleware())
	e.Use(m.Middleware())
	e.Use(middleware.BodyLimit("8M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		AllowOriginFunc:  AllowOrigin(cfg.FrontendURL, cfg.AllowedOriginSuffixes),
	}))

	productRepo := repository.NewProductRepository(opts.DB)
	orderRepo := repository.NewOrderRepository(opts.DB)
	bolsaRepo := repository.NewBolsaPaymentRepository(opts.DB)
	feedbackRepo := repository.NewFeedbackRepository(opts.DB)
	favoriteRepo := repository.NewFavoriteRepository(opts.DB)
	profileRepo := repository.NewProfileRepository(opts.DB)
	notificationRepo := repository.NewNotificationRepository(opts.DB)

	notificationSvc := service.NewNotificationService(notificationRepo)
	orderSvc := service.NewOrderService(orderRepo, notificationSvc, m)
	productSvc := service.NewProductService(productRepo, opts.Images, opts.Enhancer, opts.Writer)
	bolsaSvc := service.NewBolsaService(bolsaRepo, notificationSvc, m)
	feedbackSvc := service.NewFeedbackService(feedbackRepo)
	favoriteSvc := service.NewFavoriteService(favoriteRepo, productRepo)
	profileSvc := service.NewProfileService(profileRepo)
	checkoutSvc := service.NewCheckoutService(productRepo, orderRepo, bolsaRepo, opts.Stripe, opts.Pix, m, service.CheckoutConfig{
		FrontendURL:     cfg.FrontendURL,
		NotificationURL: cfg.MercadoPagoNotificationURL,
		PixDisplayTTL:   cfg.PixDisplayTTL,
		PixProviderTTL:  cfg.PixProviderTTL,
		Shipping:        checkout.ShippingTable(cfg.ShippingPrices()),
	})
	paymentSvc := service.NewPaymentService(orderRepo, orderSvc, opts.Stripe, opts.Pix, cfg.MercadoPagoWebhookSecret, m)
	adminSvc := service.NewAdminService(orderSvc, bolsaSvc, feedbackSvc, productSvc, profileSvc)

	productHandler := handler.NewProductHandler(productSvc)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	customerHandler := handler.NewCustomerHandler(favoriteSvc, profileSvc, feedbackSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	adminHandler := handler.NewAdminHandler(opts.Admin, adminSvc)

	s := &Server{
		e:     e,
		repos: []dbSetter{productRepo, orderRepo, bolsaRepo, feedbackRepo, favoriteRepo, profileRepo, notificationRepo},
	}
	s.dbReady.Store(opts.DB != nil)

	requireAuth, optionalAuth := passthrough, passthrough
	if opts.Auth != nil {
		requireAuth, optionalAuth = opts.Auth.RequireAuth, opts.Auth.OptionalAuth
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":         true,
			"db":         s.dbReady.Load(),
			"git_sha":    opts.SHA,
			"build_time": opts.Build,
		})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	e.POST("/webhooks/stripe", paymentHandler.StripeWebhook)
	e.POST("/webhooks/mercadopago", paymentHandler.MercadoPagoWebhook)

	api := e.Group("/api")
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.GET("/feedbacks", customerHandler.ListFeedbacks)

	co := api.Group("/checkout", optionalAuth)
	co.POST("/session", checkoutHandler.Session)
	co.POST("/embedded", checkoutHandler.Embedded)
	co.POST("/payment-intent", checkoutHandler.PaymentIntent)
	co.POST("/pix", checkoutHandler.Pix)
	co.POST("/bolsa-uniforme", checkoutHandler.Bolsa)
	api.GET("/payments/pix/:paymentId", paymentHandler.CheckPix)

	me := api.Group("/me", requireAuth)
	me.GET("/orders", orderHandler.ListMine)
	me.GET("/orders/:id", orderHandler.GetMine)
	me.GET("/favorites", customerHandler.ListFavorites)
	me.POST("/favorites", customerHandler.AddFavorite)
	me.DELETE("/favorites/:productId", customerHandler.RemoveFavorite)
	me.GET("/profile", customerHandler.GetProfile)
	me.PUT("/profile", customerHandler.SaveProfile)
	me.POST("/feedbacks", customerHandler.SubmitFeedback)
	me.GET("/notifications", notificationHandler.List)
	me.POST("/notifications/read", notificationHandler.MarkRead)

	api.POST("/admin/auth", adminHandler.Auth)
	api.POST("/admin/data", adminHandler.Data, appmw.RequireAdminToken(opts.Admin))

	return s
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}

// AllowOrigin accepts localhost, the frontend URL and hosts ending in one of suffixes.
func AllowOrigin(frontendURL string, suffixes []string) func(origin string) (bool, error) {
	frontend := strings.TrimRight(strings.ToLower(frontendURL), "/")
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		if frontend != "" && low == frontend {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := strings.ToLower(u.Hostname())
		for _, suffix := range suffixes {
			suffix = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(suffix)), ".")
			if suffix == "" {
				continue
			}
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return true, nil
			}
		}
		return false, nil
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// SetDB injects the connection once it is ready; requests before that get ErrDBNotReady.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
	s.dbReady.Store(db != nil)
}
