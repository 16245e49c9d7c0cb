package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventario is the stock record for one (producto, almacén) pair — the single
// source of truth for available quantity. Stock never goes negative: the
// decrement is a conditional UPDATE guarded by `stock >= cantidad`, and it is
// only ever mutated inside the transaction that also writes the owning sale
// or warehouse note.
type Inventario struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	ProductoID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_producto_almacen"`
	AlmacenID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_producto_almacen"`
	Stock      int       `gorm:"not null;default:0"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Almacen  *Almacen  `gorm:"foreignKey:AlmacenID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *Inventario) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName keeps the singular form used by the reporting queries.
func (Inventario) TableName() string { return "inventario" }

// Almacen is a physical warehouse.
type Almacen struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Nombre    string    `gorm:"not null"`
	Direccion *string
	CreatedAt time.Time
}

func (a *Almacen) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization (almacens → almacenes).
func (Almacen) TableName() string { return "almacenes" }
