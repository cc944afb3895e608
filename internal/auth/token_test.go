package auth

import (
	"strings"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !strings.HasPrefix(tok.Plaintext, "mtr_") {
		t.Errorf("token should start with mtr_, got: %s", tok.Plaintext)
	}
	if len(tok.ID) != 26 {
		t.Errorf("token ID should be a 26-char ULID, got: %q", tok.ID)
	}

	id, err := ParseToken(tok.Plaintext)
	if err != nil {
		t.Fatalf("generated token should parse: %v", err)
	}
	if id != tok.ID {
		t.Errorf("parsed ID = %s, want %s", id, tok.ID)
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		if seen[tok.Plaintext] {
			t.Fatal("duplicate token generated")
		}
		seen[tok.Plaintext] = true
	}
}

func TestParseToken_Invalid(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"mtr_",
		"alice", // token-as-username is not accepted
		"mtr_01HV3M9PZ8Y0Q4T6W2E8R1N5K7", // missing secret
		"mtr_tooshort_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
		"pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
	}

	for _, token := range cases {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("expected error for token %q", token)
		}
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	t.Parallel()

	a := CacheKey("mtr_01HV3M9PZ8Y0Q4T6W2E8R1N5K7_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b")
	b := CacheKey("mtr_01HV3M9PZ8Y0Q4T6W2E8R1N5K7_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b")
	c := CacheKey("mtr_01HV3M9PZ8Y0Q4T6W2E8R1N5K7_aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	if a != b {
		t.Error("same token should derive the same cache key")
	}
	if a == c {
		t.Error("different tokens should derive different cache keys")
	}
	if len(a) != 64 {
		t.Errorf("cache key should be a hex sha256, got len %d", len(a))
	}
}
