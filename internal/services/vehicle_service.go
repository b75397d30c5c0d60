package services

import (
	"context"
	"errors"
	"path"
	"strings"

	"gorm.io/gorm"

	"pilotos_api/internal/models"
	"pilotos_api/internal/storage"
)

// VehicleInput holds the vehicle photo set. Controllers fill the uploads from
// multipart files when present; JSON and form strings bind directly.
type VehicleInput struct {
	CPFPiloto      *string         `json:"cpf_piloto" form:"cpf_piloto" binding:"omitempty,max=20"`
	FotoFrente     *storage.Upload `json:"foto_frente" form:"foto_frente"`
	FotoTras       *storage.Upload `json:"foto_tras" form:"foto_tras"`
	FotoEsquerda   *storage.Upload `json:"foto_esquerda" form:"foto_esquerda"`
	FotoDireita    *storage.Upload `json:"foto_direita" form:"foto_direita"`
	NotaFiscal     *storage.Upload `json:"nota_fiscal" form:"nota_fiscal"`
	NotaFiscalTipo *string         `json:"nota_fiscal_tipo" form:"nota_fiscal_tipo" binding:"omitempty,max=50"`
}

// VehicleMediaFields lists the upload fields in the order they are stored.
var VehicleMediaFields = []string{"foto_frente", "foto_tras", "foto_esquerda", "foto_direita", "nota_fiscal"}

// Upload returns a pointer to the input slot for a media field name.
func (in *VehicleInput) Upload(field string) **storage.Upload {
	switch field {
	case "foto_frente":
		return &in.FotoFrente
	case "foto_tras":
		return &in.FotoTras
	case "foto_esquerda":
		return &in.FotoEsquerda
	case "foto_direita":
		return &in.FotoDireita
	case "nota_fiscal":
		return &in.NotaFiscal
	}
	return nil
}

type VehicleService struct {
	db   *gorm.DB
	disk *storage.Disk
}

func NewVehicleService(db *gorm.DB, disk *storage.Disk) *VehicleService {
	return &VehicleService{db: db, disk: disk}
}

// Show returns the vehicle for cpf with its media base64-encoded.
func (s *VehicleService) Show(ctx context.Context, cpf string) (*models.Carro, error) {
	c, err := s.find(ctx, cpf)
	if err != nil {
		return nil, err
	}
	view := s.serialize(*c)
	return &view, nil
}

// Create registers the vehicle for cpf, or for the body's cpf_piloto when
// cpf is empty. A CPF holds at most one vehicle.
func (s *VehicleService) Create(ctx context.Context, cpf string, in VehicleInput) (*models.Carro, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		cpf = trimmed(in.CPFPiloto)
	}
	if cpf == "" {
		return nil, fieldError("cpf_piloto", "cpf_piloto is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Carro{}).Where("cpf_piloto = ?", cpf).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newError(ErrConflict, "Carro already registered for this CPF")
	}

	c := models.Carro{CPFPiloto: cpf}
	if err := s.persistMedia(&c, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newError(ErrConflict, "Carro already registered for this CPF")
		}
		return nil, err
	}
	view := s.serialize(c)
	return &view, nil
}

// Update replaces the media that were supplied and keeps the rest.
func (s *VehicleService) Update(ctx context.Context, cpf string, in VehicleInput) (*models.Carro, error) {
	c, err := s.find(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if err := s.persistMedia(c, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	view := s.serialize(*c)
	return &view, nil
}

func (s *VehicleService) find(ctx context.Context, cpf string) (*models.Carro, error) {
	var c models.Carro
	err := s.db.WithContext(ctx).Where("cpf_piloto = ?", strings.TrimSpace(cpf)).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Carro not found")
		}
		return nil, err
	}
	return &c, nil
}

// persistMedia stores photos as carros/{cpf}/{side}.{ext}.
func (s *VehicleService) persistMedia(c *models.Carro, in VehicleInput) error {
	fields := []mediaField{
		{name: "frente", upload: in.FotoFrente, value: &c.FotoFrente},
		{name: "tras", upload: in.FotoTras, value: &c.FotoTras},
		{name: "esquerda", upload: in.FotoEsquerda, value: &c.FotoEsquerda},
		{name: "direita", upload: in.FotoDireita, value: &c.FotoDireita},
		{name: "nota_fiscal", upload: in.NotaFiscal, hint: in.NotaFiscalTipo, value: &c.NotaFiscal, mime: &c.NotaFiscalTipo},
	}
	err := persistFields(s.disk, path.Join("carros", storage.Segment(c.CPFPiloto)), fields)

	// Report photo errors under their request field names.
	var verr *ValidationError
	if errors.As(err, &verr) {
		renamed := &ValidationError{}
		for field, msgs := range verr.Fields {
			if field != "nota_fiscal" {
				field = "foto_" + field
			}
			for _, msg := range msgs {
				renamed.Add(field, msg)
			}
		}
		return renamed
	}
	return err
}

func (s *VehicleService) serialize(c models.Carro) models.Carro {
	c.FotoFrente = s.disk.Encode(c.FotoFrente)
	c.FotoTras = s.disk.Encode(c.FotoTras)
	c.FotoEsquerda = s.disk.Encode(c.FotoEsquerda)
	c.FotoDireita = s.disk.Encode(c.FotoDireita)
	c.NotaFiscal = s.disk.Encode(c.NotaFiscal)
	return c
}
