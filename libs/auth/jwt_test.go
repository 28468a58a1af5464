package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHS256RoundTrip(t *testing.T) {
	claims := Claims{
		Sub:          "owner-1",
		Role:         "user",
		BusinessType: "Box Cricket",
		Kind:         "hourly",
		Iat:          time.Now().Unix(),
		Exp:          time.Now().Add(1 * time.Hour).Unix(),
	}
	secret := "test-secret"

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("ParseAndVerifyHS256 failed: %v", err)
	}
	if parsed.Sub != claims.Sub || parsed.Kind != claims.Kind || parsed.BusinessType != claims.BusinessType {
		t.Fatalf("claims mismatch: got %+v", parsed)
	}
	if _, err := ParseAndVerifyHS256(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification error with wrong secret")
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := SignHS256(Claims{Sub: "owner-1", Exp: time.Now().Add(-time.Minute).Unix()}, "s")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "s"); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	token, err := SignHS256(Claims{Sub: "owner-1"}, "s")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	header, _ := json.Marshal(Header{Alg: "none", Typ: "JWT"})
	parts := strings.Split(token, ".")
	forged := base64.RawURLEncoding.EncodeToString(header) + "." + parts[1] + "." + parts[2]
	if _, err := ParseAndVerifyHS256(forged, "s"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRequireOwner(t *testing.T) {
	secret := "test-secret"
	token, err := SignHS256(Claims{Sub: "owner-9", Kind: "daily", Exp: time.Now().Add(time.Hour).Unix()}, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}

	h := RequireOwner(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if !ok || c.Sub != "owner-9" || OwnerID(r.Context()) != "owner-9" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}

	reqBad := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	reqBad.Header.Set("Authorization", "Bearer badtoken")
	rwBad := httptest.NewRecorder()
	h.ServeHTTP(rwBad, reqBad)
	if rwBad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rwBad.Code)
	}

	rwNone := httptest.NewRecorder()
	h.ServeHTTP(rwNone, httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	if rwNone.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rwNone.Code)
	}
}

func TestKindForBusinessType(t *testing.T) {
	cases := map[string]string{
		"Box Cricket":   KindHourly,
		" box cricket ": KindHourly,
		"Farm House":    KindDaily,
		"":              KindDaily,
	}
	for in, want := range cases {
		if got := KindForBusinessType(in); got != want {
			t.Fatalf("KindForBusinessType(%q) = %q, want %q", in, got, want)
		}
	}
}
