// internal/models/piloto.go
package models

import "time"

// Piloto is a driver profile keyed by CPF. Media columns hold storage
// references, each with an optional MIME sidecar.
type Piloto struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	UsuarioID *uint `gorm:"uniqueIndex" json:"usuario_id"` // optional one-to-one link to User

	CPFPiloto              string  `gorm:"column:cpf_piloto;size:20;uniqueIndex;not null" json:"cpf_piloto"`
	NomePiloto             string  `gorm:"size:255;not null" json:"nome_piloto"`
	EmailPiloto            *string `gorm:"size:255;index" json:"email_piloto"`
	NumeroTelefone         *string `gorm:"size:30" json:"numero_telefone"`
	DataNascimento         *string `gorm:"size:10" json:"data_nascimento"` // YYYY-MM-DD
	EstadoCivil            *int    `json:"estado_civil"`
	TipoSanguineo          *string `gorm:"size:5" json:"tipo_sanguineo"`
	NomeContatoSeguranca   *string `gorm:"size:255" json:"nome_contato_seguranca"`
	NumeroContatoSeguranca *string `gorm:"size:30" json:"numero_contato_seguranca"`
	NomePlanoSaude         *string `gorm:"size:255" json:"nome_plano_saude"`

	FotoPiloto      *string `gorm:"type:text" json:"foto_piloto"`
	FotoPilotoTipo  *string `gorm:"size:50" json:"foto_piloto_tipo"`
	FotoCnh         *string `gorm:"type:text" json:"foto_cnh"`
	FotoCnhTipo     *string `gorm:"size:50" json:"foto_cnh_tipo"`
	TermoAdesao     *string `gorm:"type:text" json:"termo_adesao"`
	TermoAdesaoTipo *string `gorm:"size:50" json:"termo_adesao_tipo"`

	TipoEndereco *string `gorm:"size:20" json:"tipo_endereco"`
	Cep          *string `gorm:"size:20" json:"cep"`
	Logradouro   *string `gorm:"size:255" json:"logradouro"`
	Numero       *string `gorm:"size:20" json:"numero"`
	Complemento  *string `gorm:"size:255" json:"complemento"`
	Bairro       *string `gorm:"size:255" json:"bairro"`
	Cidade       *string `gorm:"size:255" json:"cidade"`
	UF           *string `gorm:"column:uf;size:5" json:"uf"`
	Pais         *string `gorm:"size:100" json:"pais"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Piloto) TableName() string { return "pilotos" }
