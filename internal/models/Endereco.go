package models

import "time"

// Endereco is the single address registered for a CPF.
type Endereco struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CPFPiloto    string    `gorm:"column:cpf_piloto;size:20;uniqueIndex;not null" json:"cpf_piloto"`
	TipoEndereco string    `gorm:"size:50;not null;default:RESIDENCIAL" json:"tipo_endereco"`
	Cep          *string   `gorm:"size:20" json:"cep"`
	Logradouro   *string   `gorm:"size:255" json:"logradouro"`
	Numero       *int      `json:"numero"`
	Complemento  *string   `gorm:"size:255" json:"complemento"`
	Bairro       *string   `gorm:"size:255" json:"bairro"`
	Cidade       *string   `gorm:"size:255" json:"cidade"`
	UF           *string   `gorm:"column:uf;size:5" json:"uf"`
	Pais         string    `gorm:"size:255;not null;default:Brasil" json:"pais"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Endereco) TableName() string { return "enderecos" }
