package adminauth

import (
	"encoding/base64"
	"errors"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func hash(t *testing.T, pw string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestLoginAndVerify(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour, hash(t, "admin-pw"), hash(t, "cashier-pw"))

	token, claims, err := iss.Login(RoleCashier, "cashier-pw")
	if err != nil {
		t.Fatal(err)
	}
	got, err := iss.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != RoleCashier || got.ExpiresAt.UnixMilli() != claims.ExpiresAt.UnixMilli() {
		t.Fatalf("claims=%+v", got)
	}

	if _, _, err := iss.Login(RoleAdmin, "cashier-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err=%v", err)
	}
	if _, _, err := iss.Login("root", "admin-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err=%v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	iss := NewIssuer("s3cret", time.Hour, "", "")
	iss.now = func() time.Time { return now }

	valid := iss.Issue(Claims{Role: RoleAdmin, ExpiresAt: now.Add(time.Minute)})
	expired := iss.Issue(Claims{Role: RoleAdmin, ExpiresAt: now.Add(-time.Millisecond)})
	forgedPayload := base64.StdEncoding.EncodeToString([]byte("admin:" + strconv.FormatInt(now.Add(time.Hour).UnixMilli(), 10)))
	otherKey := NewIssuer("other", time.Hour, "", "").Issue(Claims{Role: RoleAdmin, ExpiresAt: now.Add(time.Minute)})
	badRole := iss.Issue(Claims{Role: "root", ExpiresAt: now.Add(time.Minute)})

	if _, err := iss.Verify(valid); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	for name, tok := range map[string]string{
		"empty":          "",
		"expired":        expired,
		"unsigned":       forgedPayload,
		"other secret":   otherKey,
		"unknown role":   badRole,
		"not base64":     "%%%.abc",
		"missing expiry": base64.StdEncoding.EncodeToString([]byte("admin")),
	} {
		if _, err := iss.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err=%v", name, err)
		}
	}
}

func TestUnsignedMode(t *testing.T) {
	iss := NewIssuer("", time.Hour, "", "")
	tok := iss.Issue(Claims{Role: RoleAdmin, ExpiresAt: time.Now().Add(time.Minute)})
	raw, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not plain base64: %v", err)
	}
	if string(raw[:6]) != "admin:" {
		t.Fatalf("payload=%s", raw)
	}
	if _, err := iss.Verify(tok); err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Verify(tok + ".sig"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err=%v", err)
	}
}
