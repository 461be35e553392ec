package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	at, err := NewAccessToken(secret, 42, "admin", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	if claims["role"] != "admin" {
		t.Errorf("role claim = %v, want admin", claims["role"])
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Errorf("sub claim = %v, want 42", claims["sub"])
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("right", 1, "user", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	_, err = jwt.Parse(at.Token, func(tok *jwt.Token) (any, error) {
		return []byte("wrong"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Error("token parsed with the wrong secret")
	}
}

func TestNewRefreshTokenUniqueness(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	if a.Raw == b.Raw {
		t.Error("two refresh tokens share the same raw value")
	}
	if len(a.Raw) != 96 {
		t.Errorf("raw length = %d, want 96", len(a.Raw))
	}
}

func TestHashRefreshRawStable(t *testing.T) {
	if HashRefreshRaw("abc") != HashRefreshRaw("abc") {
		t.Error("hash is not deterministic")
	}
	if HashRefreshRaw("abc") == HashRefreshRaw("abd") {
		t.Error("distinct inputs collide")
	}
	if got := len(HashRefreshRaw("abc")); got != 64 {
		t.Errorf("hash length = %d, want 64", got)
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
