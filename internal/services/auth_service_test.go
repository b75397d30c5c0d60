package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pilotos_api/internal/models"
)

func createUser(t *testing.T, svc *UserService, email, senha string) *models.User {
	t.Helper()
	in := CreateUserInput{Nome: "Test " + email, Email: email}
	if senha != "" {
		in.Senha = &senha
	}
	u, _, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	auth := NewAuthService(db)
	createUser(t, NewUserService(db, ""), "ana@example.com", "Secret1!")

	u, err := auth.Authenticate(ctx, " ANA@example.com ", "Secret1!")
	if err != nil {
		t.Fatalf("Authenticate() unexpected error: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("Authenticate() email = %q", u.Email)
	}

	for _, tc := range []struct{ email, password string }{
		{"ana@example.com", "wrong"},
		{"nobody@example.com", "Secret1!"},
	} {
		_, err := auth.Authenticate(ctx, tc.email, tc.password)
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate(%s) error = %v, want ErrUnauthorized", tc.email, err)
		}
	}
}

func TestAuthenticateInactive(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db, "")
	u := createUser(t, users, "off@example.com", "Secret1!")
	if _, err := users.Update(context.Background(), u.ID, UpdateUserInput{IsActive: ptr(false)}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := NewAuthService(db).Authenticate(context.Background(), "off@example.com", "Secret1!")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authenticate(inactive) error = %v, want ErrUnauthorized", err)
	}
}

func TestAccountRole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserService(db, "")
	auth := NewAuthService(db)
	u := createUser(t, users, "role@example.com", "Secret1!")

	role, active, err := auth.AccountRole(ctx, u.ID)
	if err != nil || role != models.RoleUser || !active {
		t.Fatalf("AccountRole() = %q, %v, %v", role, active, err)
	}

	if _, err := users.Update(ctx, u.ID, UpdateUserInput{IsActive: ptr(false)}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, active, _ := auth.AccountRole(ctx, u.ID); active {
		t.Error("deactivated account reported active")
	}

	if _, active, err := auth.AccountRole(ctx, 9999); err != nil || active {
		t.Errorf("AccountRole(unknown) = %v, %v, want inactive without error", active, err)
	}
}

func TestChangePasswordForcedIgnoresCurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	auth := NewAuthService(db)
	u, temp, err := NewUserService(db, "").Create(ctx, CreateUserInput{Nome: "Forced", Email: "forced@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !u.MustChangePassword || temp == "" {
		t.Fatalf("new user without password: must_change=%v temp=%q", u.MustChangePassword, temp)
	}

	if err := auth.ChangePassword(ctx, u.ID, ptr("not-it"), "NewPass1!"); err != nil {
		t.Fatalf("ChangePassword() unexpected error: %v", err)
	}

	got, _ := auth.CurrentUser(ctx, u.ID)
	if got.MustChangePassword {
		t.Error("forced-change flag should be cleared")
	}
	if _, err := auth.Authenticate(ctx, "forced@example.com", "NewPass1!"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	auth := NewAuthService(db)
	u := createUser(t, NewUserService(db, ""), "bia@example.com", "Secret1!")

	err := auth.ChangePassword(ctx, u.ID, ptr("wrong"), "NewPass1!")
	if _, ok := fieldsOf(t, err)["current_password"]; !ok {
		t.Errorf("wrong current password error = %v", err)
	}

	err = auth.ChangePassword(ctx, u.ID, ptr("Secret1!"), "abcdefgh")
	if _, ok := fieldsOf(t, err)["new_password"]; !ok {
		t.Errorf("weak new password error = %v", err)
	}

	if err := auth.ChangePassword(ctx, u.ID, ptr("Secret1!"), "Abcdef1!"); err != nil {
		t.Errorf("ChangePassword() unexpected error: %v", err)
	}
}

func TestRevoke(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	auth := NewAuthService(db)

	if err := auth.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() unexpected error: %v", err)
	}
	if err := auth.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() twice unexpected error: %v", err)
	}
	if err := auth.Revoke(ctx, "jti-old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Revoke() unexpected error: %v", err)
	}

	revoked, err := auth.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Errorf("IsRevoked(jti-1) = %v, %v; want true", revoked, err)
	}
	revoked, _ = auth.IsRevoked(ctx, "jti-2")
	if revoked {
		t.Error("IsRevoked(jti-2) should be false")
	}

	// the next revocation purges expired entries
	_ = auth.Revoke(ctx, "jti-3", time.Now().Add(time.Hour))
	if revoked, _ := auth.IsRevoked(ctx, "jti-old"); revoked {
		t.Error("expired revocation should have been purged")
	}
}

func TestEnsureAdmin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	auth := NewAuthService(db)

	created, err := auth.EnsureAdmin(ctx, "root@example.com", "Root123!")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin() = %v, %v; want created", created, err)
	}
	created, err = auth.EnsureAdmin(ctx, "root@example.com", "Root123!")
	if err != nil || created {
		t.Errorf("EnsureAdmin() second call = %v, %v; want no-op", created, err)
	}

	u, err := auth.Authenticate(ctx, "root@example.com", "Root123!")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if u.Tipo != models.RoleAdmin {
		t.Errorf("admin tipo = %q", u.Tipo)
	}
}
