package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shinyyama/uniforme-store/internal/adminauth"
)

func TestRunPrintsUsableHash(t *testing.T) {
	var out bytes.Buffer
	if err := run(strings.NewReader("caixa-2024\n"), &out, adminauth.RoleCashier); err != nil {
		t.Fatalf("run: %v", err)
	}
	name, hash, ok := strings.Cut(strings.TrimSpace(out.String()), "=")
	if !ok || name != "CASHIER_PASSWORD_HASH" {
		t.Fatalf("output=%q", out.String())
	}

	issuer := adminauth.NewIssuer("", time.Hour, "", hash)
	if _, _, err := issuer.Login(adminauth.RoleCashier, "caixa-2024"); err != nil {
		t.Fatalf("login with printed hash: %v", err)
	}
	if _, _, err := issuer.Login(adminauth.RoleCashier, "caixa-2024\n"); err == nil {
		t.Fatal("newline must not be part of the password")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		role  adminauth.Role
	}{
		{"empty password", "\n", adminauth.RoleAdmin},
		{"unknown role", "secret\n", adminauth.Role("root")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(strings.NewReader(tt.input), &out, tt.role); err == nil {
				t.Fatalf("expected error, output=%q", out.String())
			}
		})
	}
}
