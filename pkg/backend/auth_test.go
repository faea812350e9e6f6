package backend

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "" {
		t.Fatal("hash is empty")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword("password", hash) {
		t.Fatal("password did not verify")
	}
	if VerifyPassword("passw0rd", hash) {
		t.Fatal("wrong password verified")
	}
}

func TestGenerateToken(t *testing.T) {
	token := GenerateToken()
	if !strings.HasPrefix(token, "sm_") {
		t.Fatalf("token %q has no prefix", token)
	}
	if token == GenerateToken() {
		t.Fatal("tokens are not unique")
	}
}

func TestGenerateConfirmationKey(t *testing.T) {
	if key := GenerateConfirmationKey(); len(key) != 64 {
		t.Fatalf("key %q has length %d, want 64", key, len(key))
	}
}

func TestHashToken(t *testing.T) {
	token := GenerateToken()
	hash := HashToken(token)
	if hash == "" || hash == token {
		t.Fatal("hash is empty")
	}
	if hash != HashToken(token) {
		t.Fatal("hash is not stable")
	}
}
