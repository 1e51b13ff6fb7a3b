package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("expected correct password to verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("expected wrong password to fail verification")
	}
}

func TestHashPasswordProducesUniqueHashes(t *testing.T) {
	first, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	// bcrypt salts each hash
	if first == second {
		t.Error("expected different hashes for the same password")
	}
}
