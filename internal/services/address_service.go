package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"pilotos_api/internal/models"
)

const (
	defaultAddressType = "RESIDENCIAL"
	defaultCountry     = "Brasil"
)

// AddressInput is the body of the address endpoints. The CPF may also come
// from the path, which wins.
type AddressInput struct {
	CPFPiloto    *string      `json:"cpf_piloto" form:"cpf_piloto" binding:"omitempty,max=20"`
	TipoEndereco *string      `json:"tipo_endereco" form:"tipo_endereco" binding:"omitempty,max=50"`
	Cep          *string      `json:"cep" form:"cep" binding:"omitempty,max=20"`
	Logradouro   *string      `json:"logradouro" form:"logradouro" binding:"omitempty,max=255"`
	Numero       *json.Number `json:"numero" form:"numero"`
	Complemento  *string      `json:"complemento" form:"complemento" binding:"omitempty,max=255"`
	Bairro       *string      `json:"bairro" form:"bairro" binding:"omitempty,max=255"`
	Cidade       *string      `json:"cidade" form:"cidade" binding:"omitempty,max=255"`
	UF           *string      `json:"uf" form:"uf" binding:"omitempty,max=5"`
	Pais         *string      `json:"pais" form:"pais" binding:"omitempty,max=255"`
}

type AddressService struct {
	db *gorm.DB
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

func (s *AddressService) Show(ctx context.Context, cpf string) (*models.Endereco, error) {
	var e models.Endereco
	err := s.db.WithContext(ctx).Where("cpf_piloto = ?", strings.TrimSpace(cpf)).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Endereco not found")
		}
		return nil, err
	}
	return &e, nil
}

// Create registers the address for cpf, or for the body's cpf_piloto when
// cpf is empty. A CPF holds at most one address.
func (s *AddressService) Create(ctx context.Context, cpf string, in AddressInput) (*models.Endereco, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		cpf = trimmed(in.CPFPiloto)
	}
	if cpf == "" {
		return nil, fieldError("cpf_piloto", "cpf_piloto is required")
	}

	e := models.Endereco{CPFPiloto: cpf, TipoEndereco: defaultAddressType, Pais: defaultCountry}
	if err := applyAddressFields(&e, in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Endereco{}).Where("cpf_piloto = ?", cpf).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newError(ErrConflict, "Endereco already registered for this CPF")
	}

	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newError(ErrConflict, "Endereco already registered for this CPF")
		}
		return nil, err
	}
	return &e, nil
}

// Update applies the supplied fields; the CPF is immutable.
func (s *AddressService) Update(ctx context.Context, cpf string, in AddressInput) (*models.Endereco, error) {
	e, err := s.Show(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if err := applyAddressFields(e, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func applyAddressFields(e *models.Endereco, in AddressInput) error {
	if in.Numero != nil {
		raw := strings.TrimSpace(in.Numero.String())
		if raw == "" {
			e.Numero = nil
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fieldError("numero", "numero must be an integer")
			}
			e.Numero = &n
		}
	}
	if v := optional(in.TipoEndereco); v != nil {
		e.TipoEndereco = *v
	}
	if v := optional(in.Pais); v != nil {
		e.Pais = *v
	}

	set := func(dst **string, src *string) {
		if src != nil {
			*dst = optional(src)
		}
	}
	set(&e.Cep, in.Cep)
	set(&e.Logradouro, in.Logradouro)
	set(&e.Complemento, in.Complemento)
	set(&e.Bairro, in.Bairro)
	set(&e.Cidade, in.Cidade)
	set(&e.UF, in.UF)
	return nil
}
