package auth

import (
	"strings"
	"testing"
)

func TestGenerateTemporaryPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GenerateTemporaryPassword()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(pw) != TemporaryPasswordLength {
			t.Fatalf("expected length %d, got %d", TemporaryPasswordLength, len(pw))
		}
		if seen[pw] {
			t.Fatalf("duplicate password generated: %s", pw)
		}
		seen[pw] = true

		if !strings.ContainsAny(pw, lowerChars) {
			t.Errorf("password %q missing lowercase", pw)
		}
		if !strings.ContainsAny(pw, upperChars) {
			t.Errorf("password %q missing uppercase", pw)
		}
		if !strings.ContainsAny(pw, digitChars) {
			t.Errorf("password %q missing digit", pw)
		}
		if !strings.ContainsAny(pw, symbolChars) {
			t.Errorf("password %q missing symbol", pw)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-Value!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-Value!" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword("s3cret-Value!", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}
