package security

import (
	"strings"
	"testing"
)

func TestHashPasswordProducesDistinctBlobs(t *testing.T) {
	first, err := HashPassword("bobbycool")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("bobbycool")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected per-call salts to yield distinct blobs")
	}
	if first == "bobbycool" || strings.Contains(first, "bobbycool") {
		t.Fatal("hash must not contain the plaintext")
	}
}

func TestVerifyPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("MyPassword1!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !VerifyPassword("MyPassword1!", hash) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("NotMyPassword", hash) {
		t.Fatal("expected mismatched password to fail verification")
	}
}

func TestVerifyPasswordMalformedBlob(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "garbage", encoded: "not-a-bcrypt-blob"},
		{name: "truncated", encoded: "$2a$10$short"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if VerifyPassword("whatever", tc.encoded) {
				t.Fatalf("expected malformed blob %q to verify false", tc.encoded)
			}
		})
	}
}

func TestVerifyPasswordEmptyInput(t *testing.T) {
	hash, err := HashPassword("secret99")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if VerifyPassword("", hash) {
		t.Fatal("empty password must not verify")
	}
}

func TestConfigureBcryptCostBounds(t *testing.T) {
	t.Cleanup(func() {
		if err := ConfigureBcryptCost(DefaultBcryptCost()); err != nil {
			t.Fatalf("restore default cost: %v", err)
		}
	})

	if err := ConfigureBcryptCost(4); err == nil {
		t.Fatal("expected cost below the floor to be rejected")
	}
	if err := ConfigureBcryptCost(99); err == nil {
		t.Fatal("expected cost above bcrypt.MaxCost to be rejected")
	}
	if err := ConfigureBcryptCost(12); err != nil {
		t.Fatalf("expected cost 12 to be accepted: %v", err)
	}
	if got := CurrentBcryptCost(); got != 12 {
		t.Fatalf("expected active cost 12, got %d", got)
	}
}
