package util

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Sup3rSecret" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("Sup3rSecret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrongPass1", hash) {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", hash) {
		t.Error("empty password accepted")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword("", 4); err == nil {
		t.Error("empty password hashed without error")
	}
}

func TestIsStrongPassword(t *testing.T) {
	cases := []struct {
		pwd  string
		want bool
	}{
		{"Abcdef12", true},
		{"abcdef12", false},  // no upper
		{"ABCDEF12", false},  // no lower
		{"Abcdefgh", false},  // no digit
		{"Ab1", false},       // too short
		{"A1" + strings.Repeat("a", 40), false}, // too long
	}
	for _, tc := range cases {
		if got := IsStrongPassword(tc.pwd); got != tc.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", tc.pwd, got, tc.want)
		}
	}
}
