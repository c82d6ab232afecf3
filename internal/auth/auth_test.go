package auth

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := SignJWT(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	id, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected user 42, got %d", id)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := SignJWT(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "other"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	token, err := SignJWT(42, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	if _, err := ParseJWT("not.a.token", "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("wrong password accepted")
	}
}

func TestPolicyAdmins(t *testing.T) {
	p := NewPolicy([]string{"Admin@Example.com", "root@example.com"})
	if !p.IsAdmin("admin@example.com") {
		t.Fatalf("case-insensitive admin match expected")
	}
	if !p.IsAdmin("root@example.com") {
		t.Fatalf("root should be admin")
	}
	if p.IsAdmin("user@example.com") {
		t.Fatalf("non-admin matched")
	}

	var nilPolicy *Policy
	if nilPolicy.IsAdmin("admin@example.com") {
		t.Fatalf("nil policy must deny everyone")
	}
}
