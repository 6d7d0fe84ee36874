package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	raw, err := svc.GenerateToken("E1001", "supervisor", "d_ops")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.VerifyToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "E1001" || claims.Role != "supervisor" || claims.DepartmentID != "d_ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	minted := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	raw, err := minted.GenerateToken("E1001", "employee", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.VerifyToken(raw); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	raw, err := svc.GenerateToken("E1001", "employee", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.VerifyToken(raw); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}
