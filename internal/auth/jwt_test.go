package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateOperatorToken("op-1", "operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.OperatorID != "op-1" {
		t.Errorf("Expected operator op-1, got %s", claims.OperatorID)
	}
	if claims.Role != "operator" {
		t.Errorf("Expected role operator, got %s", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.GenerateOperatorToken("op-1", "operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("Token signed with another secret must not validate")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Hour)

	token, err := m.GenerateOperatorToken("op-1", "operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("Expired token must not validate")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, err := m.ValidateToken("not-a-token"); err == nil {
		t.Error("Garbage input must not validate")
	}
}
