// Package adminauth issues and checks the bearer tokens of the admin and cashier dashboards.
//
// A token is base64("<role>:<expiry epoch ms>"). When a secret is configured the payload is
// followed by "." and a base64url HMAC-SHA256 of the encoded payload.
package adminauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Claims struct {
	Role      Role
	ExpiresAt time.Time
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	hashes map[Role]string
	now    func() time.Time
}

// NewIssuer takes bcrypt hashes per role; a role with an empty hash cannot log in.
func NewIssuer(secret string, ttl time.Duration, adminHash, cashierHash string) *Issuer {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		hashes: map[Role]string{RoleAdmin: adminHash, RoleCashier: cashierHash},
		now:    time.Now,
	}
}

// Login checks the password for role and returns a fresh token.
func (i *Issuer) Login(role Role, password string) (string, Claims, error) {
	hash := i.hashes[role]
	if hash == "" || password == "" {
		return "", Claims{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", Claims{}, ErrInvalidCredentials
	}
	claims := Claims{Role: role, ExpiresAt: i.now().Add(i.ttl)}
	return i.Issue(claims), claims, nil
}

func (i *Issuer) Issue(c Claims) string {
	raw := string(c.Role) + ":" + strconv.FormatInt(c.ExpiresAt.UnixMilli(), 10)
	payload := base64.StdEncoding.EncodeToString([]byte(raw))
	if len(i.secret) == 0 {
		return payload
	}
	return payload + "." + i.sign(payload)
}

func (i *Issuer) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	payload, sig, signed := strings.Cut(token, ".")
	if len(i.secret) > 0 {
		if !signed || !hmac.Equal([]byte(sig), []byte(i.sign(payload))) {
			return Claims{}, ErrInvalidToken
		}
	} else if signed {
		return Claims{}, ErrInvalidToken
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	roleStr, expStr, ok := strings.Cut(string(raw), ":")
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	role := Role(roleStr)
	if role != RoleAdmin && role != RoleCashier {
		return Claims{}, ErrInvalidToken
	}
	expMs, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	exp := time.UnixMilli(expMs)
	if !i.now().Before(exp) {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Role: role, ExpiresAt: exp}, nil
}

func (i *Issuer) sign(payload string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// HashPassword is used by operators to produce the configured hashes.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
