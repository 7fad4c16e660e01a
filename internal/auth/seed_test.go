package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedAdmin_CreatesAdminOnEmptyStore(t *testing.T) {
	store := NewUserStore(testDB(t))
	ctx := context.Background()

	password, err := SeedAdmin(ctx, store, discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password == "" {
		t.Fatal("SeedAdmin() should return the generated password")
	}

	admin, err := store.FindByEmail(ctx, "admin@skillswap.local")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if admin.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", admin.Role, RoleAdmin)
	}
	if !VerifyPassword(password, admin.PasswordHash) {
		t.Error("generated password should verify against the stored hash")
	}
}

func TestSeedAdmin_SkipsWhenUsersExist(t *testing.T) {
	store := NewUserStore(testDB(t))
	ctx := context.Background()

	seedTestUser(t, store, "existing@x.com", "password123", RoleUser)

	password, err := SeedAdmin(ctx, store, discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password != "" {
		t.Error("SeedAdmin() should skip when users exist")
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("count = %d, want 1 (no admin added)", count)
	}
}
