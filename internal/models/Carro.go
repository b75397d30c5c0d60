// internal/models/carro.go
package models

import "time"

// Carro is the photo set of a driver's vehicle, one per CPF.
type Carro struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CPFPiloto      string    `gorm:"column:cpf_piloto;size:20;uniqueIndex;not null" json:"cpf_piloto"`
	FotoFrente     *string   `gorm:"type:text" json:"foto_frente"`
	FotoTras       *string   `gorm:"type:text" json:"foto_tras"`
	FotoEsquerda   *string   `gorm:"type:text" json:"foto_esquerda"`
	FotoDireita    *string   `gorm:"type:text" json:"foto_direita"`
	NotaFiscal     *string   `gorm:"type:text" json:"nota_fiscal"`
	NotaFiscalTipo *string   `gorm:"size:50" json:"nota_fiscal_tipo"` // image/* or application/pdf
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Carro) TableName() string { return "carros" }
