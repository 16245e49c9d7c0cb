package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Empresa is the issuing organization's registered fiscal identity: RUC,
// legal name and fiscal address, exactly as declared to SUNAT. Every
// submission payload embeds these fields.
type Empresa struct {
	ID              uuid.UUID `gorm:"type:char(36);primaryKey"`
	RUC             string    `gorm:"type:varchar(11);uniqueIndex;not null;column:ruc"`
	RazonSocial     string    `gorm:"not null"`
	NombreComercial string
	Direccion       string
	Departamento    string
	Provincia       string
	Distrito        string
	Ubigeo          string `gorm:"type:varchar(6)"`
	// CodLocal: código de establecimiento anexo; "0000" is the main office
	CodLocal  string `gorm:"type:varchar(4);not null;default:'0000'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Empresa) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization (empresas is fine, keep explicit).
func (Empresa) TableName() string { return "empresas" }
