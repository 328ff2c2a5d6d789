package ai

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildEnhancePrompt(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  string
	}{
		{"known", "hanger", "Style target (hanger)"},
		{"case and space", "  STUDIO ", "Style target (studio)"},
		{"fallback", "cyberpunk", "Style target (flat-lay)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildEnhancePrompt(tt.style)
			if !strings.Contains(got, tt.want) || !strings.HasPrefix(got, basePrompt) || !strings.HasSuffix(got, safetySuffix) {
				t.Fatalf("prompt=%q", got)
			}
		})
	}
}

func TestDescriptionPrompt(t *testing.T) {
	p := buildDescriptionPrompt("Camiseta Educação Física", "Colégio Horizonte", "camisetas", []string{"P", "M"})
	for _, want := range []string{"Camiseta Educação Física", "Colégio Horizonte", "Tamanhos: P, M"} {
		if !strings.Contains(p, want) {
			t.Fatalf("missing %q in %q", want, p)
		}
	}
	if strings.Contains(buildDescriptionPrompt("Meia", "", "", nil), "Escola:") {
		t.Fatal("empty school should be omitted")
	}
}

func TestEnhance(t *testing.T) {
	out := base64.StdEncoding.EncodeToString([]byte("clean-image"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") || r.URL.Query().Get("key") != "k" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"},{"inlineData":{"mimeType":"image/png","data":"` + out + `"}}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiImageClient("k", "models/test", srv.Client()).WithBaseURL(srv.URL)
	res, err := c.Enhance(context.Background(), ImageEnhanceRequest{Image: []byte("raw"), MimeType: "image/jpeg"})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Image) != "clean-image" || res.MimeType != "image/png" {
		t.Fatalf("res=%+v", res)
	}
}

func TestEnhanceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"no image"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiImageClient("k", "", srv.Client()).WithBaseURL(srv.URL)
	if _, err := c.Enhance(context.Background(), ImageEnhanceRequest{Image: []byte("raw")}); err == nil {
		t.Fatal("expected error without inline data")
	}
	if _, err := c.Enhance(context.Background(), ImageEnhanceRequest{}); err == nil {
		t.Fatal("expected error without image")
	}
	if _, err := NewGeminiImageClient("", "", nil).Enhance(context.Background(), ImageEnhanceRequest{Image: []byte("x")}); err == nil {
		t.Fatal("expected error without key")
	}
}
