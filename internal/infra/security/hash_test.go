package security

import (
	"strings"
	"testing"
)

func TestHashVerifyRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !strings.Contains(hash, ":") {
		t.Fatalf("expected salt:hash encoding, got %q", hash)
	}

	ok, err := VerifyPassword("s3cret-pw", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching password to verify")
	}
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("wrong-pw", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatched password to fail verification")
	}
}

func TestVerifyPassword_EmptyInputs(t *testing.T) {
	if ok, err := VerifyPassword("", "salt:hash"); err != nil || ok {
		t.Fatalf("empty password must fail quietly, got ok=%v err=%v", ok, err)
	}
	if ok, err := VerifyPassword("pw", ""); err != nil || ok {
		t.Fatalf("empty hash must fail quietly, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyPassword_MalformedEncoding(t *testing.T) {
	if _, err := VerifyPassword("pw", "no-separator"); err == nil {
		t.Fatalf("expected error for hash without separator")
	}
	if _, err := VerifyPassword("pw", "!!!:!!!"); err == nil {
		t.Fatalf("expected error for non-base64 components")
	}
}

func TestHashPassword_SaltsAreUnique(t *testing.T) {
	first, err := HashPassword("same-pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("same-pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must differ by salt")
	}
}
