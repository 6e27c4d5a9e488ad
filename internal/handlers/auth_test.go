package handlers

import "testing"

func TestPasswordHashing(t *testing.T) {
	password := "correct horse battery staple"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" || hash == password {
		t.Fatalf("unexpected hash %q", hash)
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for wrong password")
	}
}

func TestPasswordHashingIsSalted(t *testing.T) {
	first, err := hashPassword("pass123")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	second, err := hashPassword("pass123")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same password")
	}
}
