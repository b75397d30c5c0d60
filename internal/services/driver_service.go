package services

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pilotos_api/internal/models"
	"pilotos_api/internal/storage"
)

// DriverInput is the request contract for creating and updating drivers.
// Nil fields are left untouched on update.
type DriverInput struct {
	CPFPiloto              *string `json:"cpf_piloto" form:"cpf_piloto" binding:"omitempty,max=20"`
	NomePiloto             *string `json:"nome_piloto" form:"nome_piloto" binding:"omitempty,max=255"`
	EmailPiloto            *string `json:"email_piloto" form:"email_piloto" binding:"omitempty,email,max=255"`
	NumeroTelefone         *string `json:"numero_telefone" form:"numero_telefone" binding:"omitempty,max=30"`
	DataNascimento         *string `json:"data_nascimento" form:"data_nascimento"`
	EstadoCivil            *int    `json:"estado_civil" form:"estado_civil"`
	TipoSanguineo          *string `json:"tipo_sanguineo" form:"tipo_sanguineo" binding:"omitempty,max=5"`
	NomeContatoSeguranca   *string `json:"nome_contato_seguranca" form:"nome_contato_seguranca" binding:"omitempty,max=255"`
	NumeroContatoSeguranca *string `json:"numero_contato_seguranca" form:"numero_contato_seguranca" binding:"omitempty,max=30"`
	NomePlanoSaude         *string `json:"nome_plano_saude" form:"nome_plano_saude" binding:"omitempty,max=255"`

	FotoPiloto      *storage.Upload `json:"foto_piloto" form:"foto_piloto"`
	FotoPilotoTipo  *string         `json:"foto_piloto_tipo" form:"foto_piloto_tipo" binding:"omitempty,max=50"`
	FotoCnh         *storage.Upload `json:"foto_cnh" form:"foto_cnh"`
	FotoCnhTipo     *string         `json:"foto_cnh_tipo" form:"foto_cnh_tipo" binding:"omitempty,max=50"`
	TermoAdesao     *storage.Upload `json:"termo_adesao" form:"termo_adesao"`
	TermoAdesaoTipo *string         `json:"termo_adesao_tipo" form:"termo_adesao_tipo" binding:"omitempty,max=50"`

	TipoEndereco *string `json:"tipo_endereco" form:"tipo_endereco" binding:"omitempty,max=20"`
	Cep          *string `json:"cep" form:"cep" binding:"omitempty,max=20"`
	Logradouro   *string `json:"logradouro" form:"logradouro" binding:"omitempty,max=255"`
	Numero       *string `json:"numero" form:"numero" binding:"omitempty,max=20"`
	Complemento  *string `json:"complemento" form:"complemento" binding:"omitempty,max=255"`
	Bairro       *string `json:"bairro" form:"bairro" binding:"omitempty,max=255"`
	Cidade       *string `json:"cidade" form:"cidade" binding:"omitempty,max=255"`
	UF           *string `json:"uf" form:"uf" binding:"omitempty,max=5"`
	Pais         *string `json:"pais" form:"pais" binding:"omitempty,max=100"`
}

var DriverMediaFields = []string{"foto_piloto", "foto_cnh", "termo_adesao"}

// Upload returns a pointer to the input slot for a media field name.
func (in *DriverInput) Upload(field string) **storage.Upload {
	switch field {
	case "foto_piloto":
		return &in.FotoPiloto
	case "foto_cnh":
		return &in.FotoCnh
	case "termo_adesao":
		return &in.TermoAdesao
	}
	return nil
}

// LinkedUser describes the account a new driver was linked to.
type LinkedUser struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Created      bool   `json:"created"`
	TempPassword string `json:"temp_password,omitempty"`
}

type DriverCreated struct {
	Piloto  models.Piloto `json:"piloto"`
	Usuario *LinkedUser   `json:"usuario"`
}

// Document kinds accepted by AttachDocument.
const (
	DocumentLicense        = "cnh"
	DocumentMembershipTerm = "termo"
)

type DriverService struct {
	db              *gorm.DB
	disk            *storage.Disk
	defaultPassword string
}

func NewDriverService(db *gorm.DB, disk *storage.Disk, defaultPassword string) *DriverService {
	return &DriverService{db: db, disk: disk, defaultPassword: defaultPassword}
}

func (s *DriverService) FindByCPF(ctx context.Context, cpf string) (*models.Piloto, error) {
	var p models.Piloto
	err := s.db.WithContext(ctx).Where("cpf_piloto = ?", strings.TrimSpace(cpf)).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Piloto not found")
		}
		return nil, err
	}
	return &p, nil
}

// FindByEmail matches the driver's own email first, then the email of the
// linked user account.
func (s *DriverService) FindByEmail(ctx context.Context, email string) (*models.Piloto, error) {
	email = normalizeEmail(email)
	db := s.db.WithContext(ctx)

	var p models.Piloto
	err := db.Where("LOWER(email_piloto) = ?", email).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Joins("JOIN usuarios ON usuarios.id = pilotos.usuario_id").
		Where("usuarios.email = ?", email).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Piloto not found")
		}
		return nil, err
	}
	return &p, nil
}

// Create registers a driver. When an email is given the driver is linked to
// the user with that email, creating a USER account first if needed. Driver
// and account are written in one transaction.
func (s *DriverService) Create(ctx context.Context, in DriverInput) (*DriverCreated, error) {
	cpf := trimmed(in.CPFPiloto)
	nome := trimmed(in.NomePiloto)

	verr := &ValidationError{}
	if cpf == "" {
		verr.Add("cpf_piloto", "cpf_piloto is required")
	}
	if nome == "" {
		verr.Add("nome_piloto", "nome_piloto is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	exists, err := s.exists(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newError(ErrConflict, "Piloto already registered for this CPF")
	}

	p := models.Piloto{CPFPiloto: cpf}
	in.NomePiloto = &nome
	applyDriverFields(&p, in, true)
	if err := s.persistMedia(&p, in); err != nil {
		return nil, err
	}

	var linked *LinkedUser
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.EmailPiloto != nil {
			u, err := s.linkUser(tx, nome, *p.EmailPiloto)
			if err != nil {
				return err
			}
			p.UsuarioID = &u.ID
			linked = u
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, newError(ErrConflict, "Piloto already registered for this CPF")
		}
		return nil, err
	}

	return &DriverCreated{Piloto: s.serialize(p), Usuario: linked}, nil
}

// linkUser returns the account for email, creating it with a provisioned
// password and the forced-change flag when missing. An account already
// linked to another driver is a conflict.
func (s *DriverService) linkUser(tx *gorm.DB, nome, email string) (*LinkedUser, error) {
	email = normalizeEmail(email)

	var user models.User
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		var linked int64
		if err := tx.Model(&models.Piloto{}).Where("usuario_id = ?", user.ID).Count(&linked).Error; err != nil {
			return nil, err
		}
		if linked > 0 {
			return nil, newError(ErrConflict, "Usuario already linked to another Piloto")
		}
		return &LinkedUser{ID: user.ID, Email: user.Email}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	plain, err := provisionPassword(s.defaultPassword)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(plain)
	if err != nil {
		return nil, err
	}
	user = models.User{
		Nome:               nome,
		Email:              email,
		SenhaHash:          hash,
		Tipo:               models.RoleUser,
		IsActive:           true,
		MustChangePassword: true,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &LinkedUser{ID: user.ID, Email: user.Email, Created: true, TempPassword: plain}, nil
}

// Update applies the supplied fields. The CPF and the user link never change.
func (s *DriverService) Update(ctx context.Context, cpf string, in DriverInput) (*models.Piloto, error) {
	p, err := s.FindByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}

	if in.NomePiloto != nil && strings.TrimSpace(*in.NomePiloto) == "" {
		return nil, fieldError("nome_piloto", "nome_piloto cannot be empty")
	}
	applyDriverFields(p, in, false)
	if err := s.persistMedia(p, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	view := s.serialize(*p)
	return &view, nil
}

// List returns every driver, newest first, with media left as stored.
func (s *DriverService) List(ctx context.Context) ([]models.Piloto, error) {
	pilotos := []models.Piloto{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&pilotos).Error; err != nil {
		return nil, err
	}
	for i := range pilotos {
		pilotos[i].DataNascimento = middayTimestamp(pilotos[i].DataNascimento)
	}
	return pilotos, nil
}

func (s *DriverService) Show(ctx context.Context, cpf string) (*models.Piloto, error) {
	p, err := s.FindByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	view := s.serialize(*p)
	return &view, nil
}

func (s *DriverService) ShowByEmail(ctx context.Context, email string) (*models.Piloto, error) {
	p, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	view := s.serialize(*p)
	return &view, nil
}

// Delete removes the driver; a linked user account is kept.
func (s *DriverService) Delete(ctx context.Context, cpf string) error {
	p, err := s.FindByCPF(ctx, cpf)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(p).Error
}

// AttachDocument stores an uploaded file as the driver's license or
// membership term, replacing the previous value and its MIME type.
func (s *DriverService) AttachDocument(ctx context.Context, cpf, kind string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", newError(ErrBadRequest, "No file uploaded")
	}
	p, err := s.FindByCPF(ctx, cpf)
	if err != nil {
		return "", err
	}

	mime := strings.TrimSpace(contentType)
	if mime == "" || mime == "application/octet-stream" {
		mime = storage.Sniff(data)
	}
	rel := path.Join("pilotos", storage.Segment(p.CPFPiloto), uuid.NewString()+storage.ExtensionFor(mime))
	ref, err := s.disk.Write(rel, data)
	if err != nil {
		return "", err
	}

	column, tipoColumn := "foto_cnh", "foto_cnh_tipo"
	if kind == DocumentMembershipTerm {
		column, tipoColumn = "termo_adesao", "termo_adesao_tipo"
	}
	err = s.db.WithContext(ctx).Model(p).Updates(map[string]interface{}{
		column:     ref,
		tipoColumn: mime,
	}).Error
	if err != nil {
		return "", err
	}
	return ref, nil
}

type mediaField struct {
	name   string
	upload *storage.Upload
	hint   *string
	value  **string
	mime   **string
}

func (s *DriverService) persistMedia(p *models.Piloto, in DriverInput) error {
	fields := []mediaField{
		{"foto_piloto", in.FotoPiloto, in.FotoPilotoTipo, &p.FotoPiloto, &p.FotoPilotoTipo},
		{"foto_cnh", in.FotoCnh, in.FotoCnhTipo, &p.FotoCnh, &p.FotoCnhTipo},
		{"termo_adesao", in.TermoAdesao, in.TermoAdesaoTipo, &p.TermoAdesao, &p.TermoAdesaoTipo},
	}
	return persistFields(s.disk, path.Join("pilotos", storage.Segment(p.CPFPiloto)), fields)
}

// persistFields writes every non-empty upload under dir, named after its
// field. Undecodable values are reported per field.
func persistFields(disk *storage.Disk, dir string, fields []mediaField) error {
	verr := &ValidationError{}
	for _, f := range fields {
		if f.hint != nil && f.mime != nil {
			*f.mime = optional(f.hint)
		}
		if f.upload == nil || f.upload.Empty() {
			continue
		}
		up := *f.upload
		if up.MIME == "" && f.hint != nil {
			up.MIME = strings.TrimSpace(*f.hint)
		}
		ref, mime, err := disk.Persist(dir, f.name, up)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidMedia) || errors.Is(err, storage.ErrForeignReference) {
				verr.Add(f.name, err.Error())
				continue
			}
			return err
		}
		*f.value = &ref
		if mime != "" && f.mime != nil {
			*f.mime = &mime
		}
	}
	return verr.Err()
}

func applyDriverFields(p *models.Piloto, in DriverInput, creating bool) {
	if in.NomePiloto != nil {
		p.NomePiloto = strings.TrimSpace(*in.NomePiloto)
	}
	if in.EmailPiloto != nil {
		p.EmailPiloto = optional(in.EmailPiloto)
		if p.EmailPiloto != nil {
			email := normalizeEmail(*p.EmailPiloto)
			p.EmailPiloto = &email
		}
	}
	if in.DataNascimento != nil {
		d := NormalizeDate(*in.DataNascimento)
		if d != nil || creating || strings.TrimSpace(*in.DataNascimento) == "" {
			p.DataNascimento = d
		}
	}
	if in.EstadoCivil != nil {
		p.EstadoCivil = in.EstadoCivil
	}

	set := func(dst **string, src *string) {
		if src != nil {
			*dst = optional(src)
		}
	}
	set(&p.NumeroTelefone, in.NumeroTelefone)
	set(&p.TipoSanguineo, in.TipoSanguineo)
	set(&p.NomeContatoSeguranca, in.NomeContatoSeguranca)
	set(&p.NumeroContatoSeguranca, in.NumeroContatoSeguranca)
	set(&p.NomePlanoSaude, in.NomePlanoSaude)
	set(&p.TipoEndereco, in.TipoEndereco)
	set(&p.Cep, in.Cep)
	set(&p.Logradouro, in.Logradouro)
	set(&p.Numero, in.Numero)
	set(&p.Complemento, in.Complemento)
	set(&p.Bairro, in.Bairro)
	set(&p.Cidade, in.Cidade)
	set(&p.UF, in.UF)
	set(&p.Pais, in.Pais)
}

// serialize renders a driver for clients: midday birth date and media
// read back as base64.
func (s *DriverService) serialize(p models.Piloto) models.Piloto {
	p.DataNascimento = middayTimestamp(p.DataNascimento)
	p.FotoPiloto = s.disk.Encode(p.FotoPiloto)
	p.FotoCnh = s.disk.Encode(p.FotoCnh)
	p.TermoAdesao = s.disk.Encode(p.TermoAdesao)
	return p
}

func (s *DriverService) exists(ctx context.Context, cpf string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Piloto{}).Where("cpf_piloto = ?", cpf).Count(&count).Error
	return count > 0, err
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// optional trims s and maps blank to nil.
func optional(s *string) *string {
	v := trimmed(s)
	if v == "" {
		return nil
	}
	return &v
}
