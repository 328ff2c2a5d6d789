package main

import "testing"

func TestProductIDFromFilename(t *testing.T) {
	tests := []struct {
		name   string
		want   uint64
		wantOK bool
	}{
		{"12.jpg", 12, true},
		{"12-frente.webp", 12, true},
		{"007_costas.png", 7, true},
		{"camiseta.jpg", 0, false},
		{"0.jpg", 0, false},
		{".jpg", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := productIDFromFilename(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("productIDFromFilename(%q) = %d, %v", tt.name, got, ok)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := contentTypeFor("a.PNG"); got != "image/png" {
		t.Fatalf("got %s", got)
	}
	if got := contentTypeFor("a.jpeg"); got != "image/jpeg" {
		t.Fatalf("got %s", got)
	}
}
