package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		SigningMethod: MethodHS512,
		Secret:        []byte("unit-test-secret"),
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestSignVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, exp, err := m.Sign("user-1", KindAccess)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := m.Verify(token, VerifyOptions{Kind: KindAccess})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
	if !claims.Expiry().Equal(exp) {
		t.Fatalf("expiry mismatch: claims=%v returned=%v", claims.Expiry(), exp)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestSignUsesPerKindTTL(t *testing.T) {
	m := newTestManager(t)
	fixed := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return fixed }

	_, accessExp, err := m.Sign("u", KindAccess)
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	_, refreshExp, err := m.Sign("u", KindRefresh)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}

	if got := accessExp.Sub(fixed); got != 30*time.Minute {
		t.Fatalf("access ttl = %v", got)
	}
	if got := refreshExp.Sub(fixed); got != 720*time.Hour {
		t.Fatalf("refresh ttl = %v", got)
	}
}

func TestSameSecondTokensDiffer(t *testing.T) {
	m := newTestManager(t)
	fixed := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return fixed }

	a, _, _ := m.Sign("u", KindAccess)
	b, _, _ := m.Sign("u", KindAccess)
	if a == b {
		t.Fatal("expected distinct tokens within the same second")
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := m.Sign("u", KindAccess)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	m.now = time.Now

	if _, err := m.Verify(token, VerifyOptions{}); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	claims, err := m.Verify(token, VerifyOptions{IgnoreExpiration: true})
	if err != nil {
		t.Fatalf("expected expired token to verify when ignoring expiration: %v", err)
	}
	if claims.Expiry().After(time.Now()) {
		t.Fatal("expected past expiry to be reported")
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(Config{
		SigningMethod: MethodHS512,
		Secret:        []byte("another-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, _, _ := other.Sign("u", KindAccess)

	if _, err := m.Verify(token, VerifyOptions{}); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if _, err := m.Verify(token, VerifyOptions{IgnoreExpiration: true}); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature when ignoring expiration, got %v", err)
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	m := newTestManager(t)

	claims := Claims{Kind: KindAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(token, VerifyOptions{}); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected algorithm mismatch rejection, got %v", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager(t)

	claims := Claims{Kind: KindAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(token, VerifyOptions{IgnoreExpiration: true}); err == nil {
		t.Fatal("expected alg=none to be rejected")
	}
}

func TestVerifyKindMismatch(t *testing.T) {
	m := newTestManager(t)
	refresh, _, _ := m.Sign("u", KindRefresh)

	if _, err := m.Verify(refresh, VerifyOptions{Kind: KindAccess}); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Verify("not-a-token", VerifyOptions{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeUntrustedIgnoresSignature(t *testing.T) {
	other, err := NewManager(Config{
		Secret:     []byte("some-other-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, _, _ := other.Sign("subject-42", KindRefresh)

	claims, err := DecodeUntrusted(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Subject != "subject-42" || claims.Kind != KindRefresh {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := DecodeUntrusted("garbage"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestNewManagerValidation(t *testing.T) {
	cases := []Config{
		{Secret: []byte("s"), AccessTTL: 0, RefreshTTL: time.Hour},
		{Secret: []byte("s"), AccessTTL: time.Minute, RefreshTTL: 0},
		{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		{Secret: []byte("s"), AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: "RS256"},
		{Secret: []byte("s"), AccessTTL: time.Minute, RefreshTTL: time.Hour, Leeway: time.Hour},
	}
	for i, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}

	m, err := NewManager(Config{Secret: []byte("s"), AccessTTL: time.Minute, RefreshTTL: time.Hour})
	if err != nil {
		t.Fatalf("default method: %v", err)
	}
	if m.Algorithm() != "HS512" {
		t.Fatalf("expected HS512 default, got %s", m.Algorithm())
	}
}
