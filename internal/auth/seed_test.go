package auth

import (
	"context"
	"testing"

	"github.com/enerlink/enerlink-core/internal/infrastructure/logging"
)

// TestSeedAdmin verifies first-boot seeding and the skip on re-run.
func TestSeedAdmin(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	password, err := SeedAdmin(ctx, repo, logging.Default())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password == "" {
		t.Fatal("SeedAdmin() returned empty password on first boot")
	}

	admin, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if admin.UserType != TypeAdmin {
		t.Errorf("UserType = %q, want %q", admin.UserType, TypeAdmin)
	}

	ok, err := VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("seeded password does not verify against stored hash")
	}

	// Second boot: users exist, no new seed.
	password, err = SeedAdmin(ctx, repo, logging.Default())
	if err != nil {
		t.Fatalf("SeedAdmin() second run error = %v", err)
	}
	if password != "" {
		t.Error("SeedAdmin() re-seeded an already populated database")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}
