package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a sellable catalog item. Precio is tax-inclusive (IGV included),
// matching what the cashier sees on the ticket.
type Producto struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Codigo      string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Descripcion string    `gorm:"index;not null"`
	Categoria   string    `gorm:"not null"`
	Marca       *string
	Precio      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// UnidadMedida uses SUNAT catalog 03 codes ("NIU" unidad, "ZZ" servicio)
	UnidadMedida string `gorm:"type:varchar(5);not null;default:'NIU'"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Variantes []ProductoVariante `gorm:"foreignKey:ProductoID"`
}

func (p *Producto) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductoVariante is a SKU-like attribute set (color/size) under a product.
// Sales may reference a variant per line; stock is tracked at product level.
type ProductoVariante struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	ProductoID uuid.UUID `gorm:"type:char(36);not null;index"`
	Color      *string   `gorm:"type:varchar(30)"`
	Talla      *string   `gorm:"type:varchar(10)"`
	CreatedAt  time.Time
}

func (v *ProductoVariante) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization.
func (ProductoVariante) TableName() string { return "producto_variantes" }
