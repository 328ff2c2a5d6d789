package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shinyyama/uniforme-store/internal/adminauth"
	"github.com/shinyyama/uniforme-store/internal/config"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		FrontendURL:           "https://loja.example.com",
		AllowedOriginSuffixes: []string{"vercel.app"},
		AdminTokenSecret:      "secret",
		AdminTokenTTL:         time.Hour,
		PixDisplayTTL:         30 * time.Minute,
		PixProviderTTL:        time.Hour,
		ShippingStandardPrice: decimal.RequireFromString("15.00"),
		ShippingExpressPrice:  decimal.RequireFromString("29.90"),
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAllowOrigin(t *testing.T) {
	allow := AllowOrigin("https://loja.example.com/", []string{"vercel.app", ".lovable.app", " "})
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:5173", true},
		{"https://127.0.0.1:8443", true},
		{"https://loja.example.com", true},
		{"https://uniforme-git-main.vercel.app", true},
		{"https://preview.lovable.app", true},
		{"https://vercel.app", true},
		{"https://evilvercel.app", false},
		{"ftp://x.vercel.app", false},
		{"https://example.org", false},
	}
	for _, tt := range tests {
		got, err := allow(tt.origin)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("AllowOrigin(%q)=%v want %v", tt.origin, got, tt.want)
		}
	}
}

func TestHealthzBeforeAndAfterDB(t *testing.T) {
	s := New(Options{Config: testConfig(), SHA: "abc123"})

	rec := do(s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["db"] != false || body["git_sha"] != "abc123" {
		t.Fatalf("body=%v", body)
	}

	rec = do(s, http.MethodGet, "/api/products", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("products before db status=%d", rec.Code)
	}

	s.SetDB(testDB(t))
	rec = do(s, http.MethodGet, "/healthz", "")
	if !strings.Contains(rec.Body.String(), `"db":true`) {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestSetDBWhileServing(t *testing.T) {
	s := New(Options{Config: testConfig()})
	db := testDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rec := do(s, http.MethodGet, "/api/products", "")
				if rec.Code != http.StatusOK && rec.Code != http.StatusServiceUnavailable {
					t.Errorf("status=%d body=%s", rec.Code, rec.Body.String())
					return
				}
			}
		}()
	}
	s.SetDB(db)
	wg.Wait()

	if rec := do(s, http.MethodGet, "/api/products", ""); rec.Code != http.StatusOK {
		t.Fatalf("after SetDB status=%d", rec.Code)
	}
}

func TestPublicCatalogRoutes(t *testing.T) {
	db := testDB(t)
	p := &model.Product{Name: "Camiseta", School: "Colégio Horizonte", Price: decimal.RequireFromString("59.90"), IsActive: true}
	if err := db.Create(p).Error; err != nil {
		t.Fatal(err)
	}
	s := New(Options{Config: testConfig(), DB: db})

	rec := do(s, http.MethodGet, "/api/products?school=Col%C3%A9gio%20Horizonte", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(s, http.MethodGet, "/api/products/1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"similar":[]`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := do(s, http.MethodGet, "/api/products/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/products/99", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing product status=%d", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/feedbacks", ""); rec.Code != http.StatusOK {
		t.Fatalf("feedbacks status=%d", rec.Code)
	}
}

func TestProtectedRoutes(t *testing.T) {
	s := New(Options{Config: testConfig(), DB: testDB(t)})

	if rec := do(s, http.MethodGet, "/api/me/orders", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me/orders status=%d", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/api/admin/data", `{"action":"list_orders"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin/data status=%d", rec.Code)
	}
	// no password hashes configured
	if rec := do(s, http.MethodPost, "/api/admin/auth", `{"role":"admin","password":"x"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin/auth status=%d", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rec.Code)
	}
}

func TestAdminDataWithIssuedToken(t *testing.T) {
	cfg := testConfig()
	s := New(Options{Config: cfg, DB: testDB(t)})
	token := issueToken(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/data", strings.NewReader(`{"action":"dashboard_stats"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pending_bolsa":0`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func issueToken(cfg *config.Config) string {
	issuer := adminauth.NewIssuer(cfg.AdminTokenSecret, cfg.AdminTokenTTL, "", "")
	return issuer.Issue(adminauth.Claims{Role: adminauth.RoleCashier, ExpiresAt: time.Now().Add(time.Hour)})
}

func TestRequestIDHeader(t *testing.T) {
	s := New(Options{Config: testConfig(), DB: testDB(t)})

	rec := do(s, http.MethodGet, "/healthz", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("request id=%q", got)
	}
}
