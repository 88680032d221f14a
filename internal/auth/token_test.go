package auth

import (
	"errors"
	"testing"
)

const testSecret = "test-secret-key-at-least-32-chars!"

func testUser() *User {
	return &User{
		ID:       "usr-12345678",
		Username: "alice",
		UserType: TypeUser,
	}
}

// TestGenerateAndParseToken verifies the JWT round trip.
func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "usr-12345678" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "usr-12345678")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.UserType != TypeUser {
		t.Errorf("UserType = %q, want %q", claims.UserType, TypeUser)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(claims.IssuedAt.Time) {
		t.Error("ExpiresAt missing or before IssuedAt")
	}
}

// TestParseToken_WrongSecret verifies signature validation.
func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ParseToken(token, "another-secret-key-32-characters!!"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

// TestParseToken_Garbage verifies rejection of non-JWT input.
func TestParseToken_Garbage(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ParseToken(token, testSecret); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ParseToken(%q) error = %v, want ErrTokenInvalid", token, err)
		}
	}
}

// TestGenerateAccessToken_DefaultTTL verifies the fallback TTL is applied.
func TestGenerateAccessToken_DefaultTTL(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("ExpiresAt missing")
	}
}
