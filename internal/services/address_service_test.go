package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestAddressCreateDefaultsAndConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAddressService(db)

	num := json.Number("42")
	e, err := svc.Create(ctx, "", AddressInput{CPFPiloto: ptr("123"), Cidade: ptr("Recife"), Numero: &num})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if e.TipoEndereco != "RESIDENCIAL" || e.Pais != "Brasil" {
		t.Errorf("defaults = %q, %q", e.TipoEndereco, e.Pais)
	}
	if e.Numero == nil || *e.Numero != 42 {
		t.Errorf("numero = %v, want 42", e.Numero)
	}

	if _, err := svc.Create(ctx, "123", AddressInput{}); !errors.Is(err, ErrConflict) {
		t.Errorf("second Create() error = %v, want ErrConflict", err)
	}
}

func TestAddressValidation(t *testing.T) {
	svc := NewAddressService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, "", AddressInput{})
	if _, ok := fieldsOf(t, err)["cpf_piloto"]; !ok {
		t.Errorf("missing cpf error = %v", err)
	}

	bad := json.Number("12a")
	_, err = svc.Create(ctx, "1", AddressInput{Numero: &bad})
	if _, ok := fieldsOf(t, err)["numero"]; !ok {
		t.Errorf("non-numeric numero error = %v", err)
	}
}

func TestAddressPathCPFWins(t *testing.T) {
	svc := NewAddressService(newTestDB(t))
	e, err := svc.Create(context.Background(), "from-path", AddressInput{CPFPiloto: ptr("from-body")})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if e.CPFPiloto != "from-path" {
		t.Errorf("cpf = %q, want from-path", e.CPFPiloto)
	}
}

func TestAddressUpdatePartial(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAddressService(db)
	if _, err := svc.Create(ctx, "55", AddressInput{Cidade: ptr("Natal"), Bairro: ptr("Centro")}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	e, err := svc.Update(ctx, "55", AddressInput{CPFPiloto: ptr("66"), Bairro: ptr("Ponta Negra")})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if e.CPFPiloto != "55" {
		t.Errorf("cpf changed to %q", e.CPFPiloto)
	}
	if *e.Bairro != "Ponta Negra" || *e.Cidade != "Natal" {
		t.Errorf("address = %+v", e)
	}

	if _, err := svc.Update(ctx, "404", AddressInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v", err)
	}
	if _, err := svc.Show(ctx, "404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Show(missing) error = %v", err)
	}
}
