package services

import (
	"context"
	"errors"
	"testing"

	"pilotos_api/internal/models"
)

func TestCreateUserWithoutPasswordUsesDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, "Default1!")

	u, temp, err := svc.Create(context.Background(), CreateUserInput{Nome: "Caio", Email: "Caio@Example.com"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if temp != "Default1!" {
		t.Errorf("temp password = %q, want configured default", temp)
	}
	if !u.MustChangePassword {
		t.Error("must_change_password should be true")
	}
	if u.Email != "caio@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.Tipo != models.RoleUser {
		t.Errorf("tipo = %q, want USER", u.Tipo)
	}
}

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, "")
	createUser(t, svc, "dup@example.com", "Secret1!")

	_, _, err := svc.Create(ctx, CreateUserInput{Nome: "Dup", Email: "DUP@example.com"})
	if _, ok := fieldsOf(t, err)["email"]; !ok {
		t.Errorf("duplicate email error = %v", err)
	}

	_, _, err = svc.Create(ctx, CreateUserInput{Nome: "Weak", Email: "weak@example.com", Senha: ptr("abcdefgh")})
	if _, ok := fieldsOf(t, err)["senha"]; !ok {
		t.Errorf("weak password error = %v", err)
	}

	_, _, err = svc.Create(ctx, CreateUserInput{Nome: "Role", Email: "role@example.com", Tipo: ptr("superuser")})
	if _, ok := fieldsOf(t, err)["tipo"]; !ok {
		t.Errorf("bad role error = %v", err)
	}

	u, temp, err := svc.Create(ctx, CreateUserInput{Nome: "Gestor", Email: "g@example.com", Senha: ptr("Secret1!"), Tipo: ptr("gestor")})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if u.Tipo != models.RoleFiscal || temp != "" || u.MustChangePassword {
		t.Errorf("user = %+v, temp %q", u, temp)
	}
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, "")
	for _, email := range []string{"zeca@example.com", "ana@example.com", "bruno@other.org"} {
		createUser(t, svc, email, "Secret1!")
	}

	page, err := svc.List(ctx, UserListParams{Search: "EXAMPLE"})
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if page.Total != 2 || len(page.Data) != 2 {
		t.Fatalf("List(search) total = %d, len = %d; want 2", page.Total, len(page.Data))
	}
	if page.Data[0].Email != "ana@example.com" {
		t.Errorf("List() not ordered by nome: first = %q", page.Data[0].Email)
	}

	page, _ = svc.List(ctx, UserListParams{PerPage: 1000, Page: 1})
	if page.PerPage != maxPerPage {
		t.Errorf("per_page = %d, want clamp to %d", page.PerPage, maxPerPage)
	}
	page, _ = svc.List(ctx, UserListParams{PerPage: -5, Page: 2})
	if page.PerPage != 1 || page.CurrentPage != 2 || page.LastPage != 3 || len(page.Data) != 1 {
		t.Errorf("page = %+v", page)
	}
}

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, "")
	createUser(t, svc, "taken@example.com", "Secret1!")
	u, _, _ := svc.Create(ctx, CreateUserInput{Nome: "Edu", Email: "edu@example.com"})

	_, err := svc.Update(ctx, u.ID, UpdateUserInput{Email: ptr("taken@example.com")})
	if _, ok := fieldsOf(t, err)["email"]; !ok {
		t.Errorf("email clash error = %v", err)
	}

	// own email is not a clash
	if _, err := svc.Update(ctx, u.ID, UpdateUserInput{Email: ptr("EDU@example.com")}); err != nil {
		t.Errorf("Update(own email) unexpected error: %v", err)
	}

	got, err := svc.Update(ctx, u.ID, UpdateUserInput{Senha: ptr("Secret2@"), Tipo: ptr("admin")})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got.MustChangePassword {
		t.Error("password change should clear the forced-change flag")
	}
	if got.Tipo != models.RoleAdmin {
		t.Errorf("tipo = %q, want ADMIN", got.Tipo)
	}

	got, _ = svc.Update(ctx, u.ID, UpdateUserInput{Senha: ptr("Secret3#"), MustChangePassword: ptr(true)})
	if !got.MustChangePassword {
		t.Error("explicit must_change_password should win")
	}

	if _, err := svc.Update(ctx, 9999, UpdateUserInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUserUnlinksDriver(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	drivers := NewDriverService(db, newTestDisk(t), "")
	created, err := drivers.Create(ctx, DriverInput{
		CPFPiloto:   ptr("111"),
		NomePiloto:  ptr("Davi"),
		EmailPiloto: ptr("davi@example.com"),
	})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}

	users := NewUserService(db, "")
	if err := users.Delete(ctx, created.Usuario.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := users.Get(ctx, created.Usuario.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v", err)
	}

	p, err := drivers.FindByCPF(ctx, "111")
	if err != nil {
		t.Fatalf("driver should survive: %v", err)
	}
	if p.UsuarioID != nil {
		t.Errorf("usuario_id = %d, want nil", *p.UsuarioID)
	}
}
