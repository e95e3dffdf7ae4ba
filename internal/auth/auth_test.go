package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1234")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "pw1234" {
		t.Fatal("hash must not be the clear text password")
	}

	if err := h.Compare(hash, "pw1234"); err != nil {
		t.Errorf("Compare with correct password = %v, want nil", err)
	}
	if err := h.Compare(hash, "wrong"); err != ErrPasswordMismatch {
		t.Errorf("Compare with wrong password = %v, want ErrPasswordMismatch", err)
	}
}

func TestBcryptSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestBcryptEmptyPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	if _, err := h.Hash(""); err != ErrEmptyPassword {
		t.Errorf("Hash(\"\") = %v, want ErrEmptyPassword", err)
	}
}

func TestNewBcryptHasherCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"min", bcrypt.MinCost, bcrypt.MinCost},
		{"too low", 1, bcrypt.DefaultCost},
		{"too high", 99, bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewBcryptHasher(tt.cost).cost; got != tt.want {
				t.Errorf("cost = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	a := HashIP("192.168.1.1")
	b := HashIP("192.168.1.1")
	c := HashIP("192.168.1.2")

	if a != b {
		t.Error("same IP should produce same hash")
	}
	if a == c {
		t.Error("different IPs should produce different hashes")
	}
	if len(a) != 32 {
		t.Errorf("hash length = %d, want 32", len(a))
	}
}
